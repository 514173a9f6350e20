package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractListPath string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract programs from a saved program list",
	Long: `Run only the extraction phase against a program list produced by
'basicbook locate' (or edited by hand). Only the distinct pages the
list references are uploaded, each at most once.

Examples:
  basicbook extract --program-list ~/.basicbook/transcriptions/program_list.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(pauseFromCmd(cmd))
		if err != nil {
			return err
		}

		report, err := p.ExtractOnly(cmd.Context(), extractListPath)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %d saved, %d skipped, %d failed (%d programs)\n",
			report.RunID, report.Saved, report.Skipped, report.Failed, len(report.Programs))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractListPath, "program-list", "", "path to the program list JSON file (required)")
	extractCmd.MarkFlagRequired("program-list")
	addPauseFlag(extractCmd)
	addOutputDirFlag(extractCmd)
	rootCmd.AddCommand(extractCmd)
}
