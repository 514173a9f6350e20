package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	locateStart int
	locateEnd   int
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Locate programs in a page range without extracting them",
	Long: `Run only the location phase: upload the page range, ask the analysis
service which BASIC programs appear, and save the program list to the
transcriptions directory. Use 'basicbook extract' to transcribe the
listed programs later.

Examples:
  basicbook locate --start 1 --end 120`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveRange(cmd, &locateStart, &locateEnd); err != nil {
			return err
		}

		p, h, err := newPipeline(pauseFromCmd(cmd))
		if err != nil {
			return err
		}

		records, err := p.LocateOnly(cmd.Context(), locateStart, locateEnd)
		if err != nil {
			return err
		}

		fmt.Printf("Found %d programs, list saved to %s\n", len(records), h.ProgramListPath())
		for _, rec := range records {
			fmt.Printf("  %-30s pages %v\n", rec.Name, rec.Pages)
		}
		return nil
	},
}

func init() {
	addRangeFlags(locateCmd, &locateStart, &locateEnd)
	addPauseFlag(locateCmd)
	rootCmd.AddCommand(locateCmd)
}
