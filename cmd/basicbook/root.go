package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/basicbook/internal/config"
	"github.com/jackzampolin/basicbook/internal/home"
	"github.com/jackzampolin/basicbook/internal/pages"
	"github.com/jackzampolin/basicbook/internal/pipeline"
	"github.com/jackzampolin/basicbook/internal/providers"
	"github.com/jackzampolin/basicbook/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "basicbook",
	Short: "Extract BASIC program listings from scanned book pages",
	Long: `Basicbook turns scanned pages of classic BASIC books into machine-readable
program listings using a multimodal analysis service.

The pipeline runs in two phases:
  - Locate: scan a page range and list every program found
  - Extract: transcribe each program's source into a markdown file

Page images are cached locally so repeated runs skip completed work.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.basicbook/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "basicbook home directory (default: ~/.basicbook)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Set up the logger before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	}

	rootCmd.AddCommand(versionCmd)
}

// loadHome resolves the home directory, creating it and a default config
// file on first use.
func loadHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	if !h.ConfigExists() {
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return nil, err
		}
		logger.Info("wrote default config", "path", h.ConfigPath())
	}
	return h, nil
}

// loadConfig loads configuration, preferring an explicit --config file and
// falling back to the home directory config.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}

// watchDownloadPause hot-reloads the inter-download pause from the config
// file while a command runs. An explicit --download-pause pins the value,
// so config changes are ignored in that case.
func watchDownloadPause(cm *config.Manager, cache *pages.Cache, pause pauseFlag) {
	if !pause.set {
		cm.OnChange(func(cfg *config.Config) {
			cache.SetPause(cfg.Download.Pause)
		})
	}
	cm.WatchConfig()
}

// newPageCache builds the page image cache from config.
func newPageCache(cfg *config.Config, h *home.Dir, pause pauseFlag) *pages.Cache {
	p := cfg.Download.Pause
	if pause.set {
		p = pause.value
	}
	return pages.New(pages.Config{
		BaseURL:   cfg.Download.BaseURL,
		Extension: cfg.Download.Extension,
		Pause:     p,
		Home:      h,
		Logger:    logger,
	})
}

// newPipeline assembles the full pipeline from config and flags.
func newPipeline(pause pauseFlag) (*pipeline.Pipeline, *home.Dir, error) {
	h, err := loadHome()
	if err != nil {
		return nil, nil, err
	}
	cm, err := loadConfig(h)
	if err != nil {
		return nil, nil, err
	}
	cfg := cm.Get()
	client, err := providers.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	cache := newPageCache(cfg, h, pause)
	watchDownloadPause(cm, cache, pause)
	p := pipeline.New(pipeline.Config{
		Cache:     cache,
		Client:    client,
		Home:      h,
		OutputDir: outputDir,
		Logger:    logger,
	})
	return p, h, nil
}
