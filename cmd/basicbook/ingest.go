package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/basicbook/internal/ingest"
)

var ingestStartPage int

var ingestCmd = &cobra.Command{
	Use:   "ingest <book.pdf> [book-2.pdf ...]",
	Short: "Render PDF book scans into the page cache",
	Long: `Render every page of one or more PDF scans directly into the pages
directory, as an alternative to downloading page images. Multi-part
PDFs (book-1.pdf, book-2.pdf, ...) are numbered continuously in part
order. Requires pdftoppm (poppler-utils) on the PATH.

Examples:
  basicbook ingest basicgames.pdf
  basicbook ingest scan-1.pdf scan-2.pdf --start-page 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHome()
		if err != nil {
			return err
		}

		res, err := ingest.Ingest(cmd.Context(), h, ingest.Request{
			PDFPaths:  args,
			StartPage: ingestStartPage,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Rendered %d pages (%d-%d) into %s\n", res.PageCount, res.FirstPage, res.LastPage, h.PagesDir())
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestStartPage, "start-page", 1, "page number assigned to the first rendered page")
	rootCmd.AddCommand(ingestCmd)
}
