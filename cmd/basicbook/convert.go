package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	convertStart int
	convertEnd   int
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert already-downloaded raw images to PNG",
	Long: `Convert raw page images in the downloads directory to normalized PNGs
without any network activity. Pages with no raw image are skipped.

Examples:
  basicbook convert --start 1 --end 120`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveRange(cmd, &convertStart, &convertEnd); err != nil {
			return err
		}

		h, err := loadHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}

		converted, err := newPageCache(cm.Get(), h, pauseFlag{}).ConvertRange(convertStart, convertEnd)
		if err != nil {
			return err
		}

		fmt.Printf("%d pages converted\n", len(converted))
		return nil
	},
}

func init() {
	addRangeFlags(convertCmd, &convertStart, &convertEnd)
	rootCmd.AddCommand(convertCmd)
}
