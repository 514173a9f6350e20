package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runStart int
	runEnd   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline over a page range",
	Long: `Run both pipeline phases over a page range: fetch and normalize page
images, upload them, locate every BASIC program, then extract each
program's source into a markdown file under the programs directory.

All uploaded files are deleted from the remote service before the run
ends, whether it succeeds or fails.

Examples:
  basicbook run --start 1 --end 20
  basicbook run --start 80 --end 85 --download-pause 500ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveRange(cmd, &runStart, &runEnd); err != nil {
			return err
		}

		p, _, err := newPipeline(pauseFromCmd(cmd))
		if err != nil {
			return err
		}

		report, err := p.Run(cmd.Context(), runStart, runEnd)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %d saved, %d skipped, %d failed (%d programs)\n",
			report.RunID, report.Saved, report.Skipped, report.Failed, len(report.Programs))
		return nil
	},
}

func init() {
	addRangeFlags(runCmd, &runStart, &runEnd)
	addPauseFlag(runCmd)
	addOutputDirFlag(runCmd)
	rootCmd.AddCommand(runCmd)
}
