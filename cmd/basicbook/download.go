package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	downloadStart int
	downloadEnd   int
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and normalize page images without calling the analysis service",
	Long: `Fetch raw page images for a range and convert them to PNG, populating
the local cache. Pages already cached are skipped, so the command is
safe to re-run after a partial failure.

Examples:
  basicbook download --start 1 --end 120
  basicbook download --start 1 --end 120 --download-pause 1s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveRange(cmd, &downloadStart, &downloadEnd); err != nil {
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

		pause := pauseFromCmd(cmd)
		cache := newPageCache(cm.Get(), h, pause)
		watchDownloadPause(cm, cache, pause)

		sum, err := cache.EnsureRange(cmd.Context(), downloadStart, downloadEnd)
		if err != nil {
			return err
		}

		fmt.Printf("%d pages available (%d cached, %d downloaded), %d fetch errors, %d convert errors\n",
			len(sum.Available), sum.Cached, sum.Downloaded, len(sum.FetchErrs), len(sum.ConvertErrs))
		return nil
	},
}

func init() {
	addRangeFlags(downloadCmd, &downloadStart, &downloadEnd)
	addPauseFlag(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}
