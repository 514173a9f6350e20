package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// pauseFlag carries an optional --download-pause override. The config
// value applies unless the flag was given explicitly.
type pauseFlag struct {
	set   bool
	value time.Duration
}

var (
	downloadPause time.Duration
	singlePage    int
	outputDir     string
)

// addRangeFlags registers the page range flags shared by commands that
// operate over a span of pages. --page is shorthand for a one-page range.
// The default range is pages 1-10.
func addRangeFlags(cmd *cobra.Command, start, end *int) {
	cmd.Flags().IntVar(start, "start", 1, "first page number")
	cmd.Flags().IntVar(end, "end", 10, "last page number")
	cmd.Flags().IntVar(&singlePage, "page", 0, "single page number (overrides --start/--end)")
}

// resolveRange applies --page and validates the resulting range.
func resolveRange(cmd *cobra.Command, start, end *int) error {
	if cmd.Flags().Changed("page") {
		*start, *end = singlePage, singlePage
	}
	if *start < 1 {
		return fmt.Errorf("--start must be >= 1, got %d", *start)
	}
	if *end < *start {
		return fmt.Errorf("--end (%d) must be >= --start (%d)", *end, *start)
	}
	return nil
}

// addOutputDirFlag registers the --output-dir override for commands that
// write program files.
func addOutputDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for program markdown files (default: <home>/programs)")
}

// addPauseFlag registers the --download-pause override.
func addPauseFlag(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&downloadPause, "download-pause", 0, "pause between page downloads (overrides config)")
}

// pauseFromCmd reads the --download-pause flag if it was set.
func pauseFromCmd(cmd *cobra.Command) pauseFlag {
	return pauseFlag{set: cmd.Flags().Changed("download-pause"), value: downloadPause}
}
