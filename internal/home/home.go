package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the basicbook home directory.
	DefaultDirName = ".basicbook"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// ProgramListFileName is the persisted program list produced by the
	// locate phase.
	ProgramListFileName = "program_list.json"
)

// Dir represents the basicbook home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.basicbook).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DownloadsDir returns the directory for raw fetched page images.
func (d *Dir) DownloadsDir() string {
	return filepath.Join(d.path, "downloads")
}

// PagesDir returns the directory for normalized (PNG) page images.
func (d *Dir) PagesDir() string {
	return filepath.Join(d.path, "pages")
}

// TranscriptionsDir returns the directory for the program list and run
// reports.
func (d *Dir) TranscriptionsDir() string {
	return filepath.Join(d.path, "transcriptions")
}

// ProgramsDir returns the directory for per-program markdown files.
func (d *Dir) ProgramsDir() string {
	return filepath.Join(d.path, "programs")
}

// RawImagePath returns the path to a raw fetched image for a page.
// Page numbers are 1-indexed; ext includes the leading dot (".gif").
func (d *Dir) RawImagePath(page int, ext string) string {
	return filepath.Join(d.DownloadsDir(), fmt.Sprintf("page%d%s", page, ext))
}

// PageImagePath returns the path to the normalized image for a page.
func (d *Dir) PageImagePath(page int) string {
	return filepath.Join(d.PagesDir(), fmt.Sprintf("page%d.png", page))
}

// ProgramListPath returns the path to the persisted program list.
func (d *Dir) ProgramListPath() string {
	return filepath.Join(d.TranscriptionsDir(), ProgramListFileName)
}

// RunReportPath returns the path to the persisted report for a run.
func (d *Dir) RunReportPath(runID string) string {
	return filepath.Join(d.TranscriptionsDir(), fmt.Sprintf("run_%s.json", runID))
}

// EnsureExists creates the home directory and all cache subdirectories.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		d.DownloadsDir(),
		d.PagesDir(),
		d.TranscriptionsDir(),
		d.ProgramsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}
