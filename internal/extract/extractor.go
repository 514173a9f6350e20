package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackzampolin/basicbook/internal/listing"
	"github.com/jackzampolin/basicbook/internal/pageindex"
	"github.com/jackzampolin/basicbook/internal/prompts"
	"github.com/jackzampolin/basicbook/internal/providers"
)

// Extractor issues one generation request per program and writes the
// transcribed source to disk. Programs are processed strictly in order;
// one program's failure never stops the ones after it.
type Extractor struct {
	client providers.AnalysisClient
	outDir string
	log    *slog.Logger
}

// New creates an Extractor that writes program files under outDir.
func New(client providers.AnalysisClient, outDir string, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{client: client, outDir: outDir, log: log}
}

// Run extracts every record against the page index and returns one outcome
// per record, in record order.
func (e *Extractor) Run(ctx context.Context, records []listing.Record, ix pageindex.Index) []Outcome {
	outcomes := make([]Outcome, 0, len(records))
	for i, rec := range records {
		e.log.Info("extracting program", "index", i+1, "total", len(records), "name", rec.Name, "pages", rec.Pages)
		outcomes = append(outcomes, e.Extract(ctx, rec, ix))
	}
	return outcomes
}

// Extract runs a single program through the extraction phase. A program
// with no name, no available pages, or an empty transcription is skipped
// without error; only a failed generation request yields StatusFailed.
func (e *Extractor) Extract(ctx context.Context, rec listing.Record, ix pageindex.Index) Outcome {
	if strings.TrimSpace(rec.Name) == "" {
		e.log.Warn("skipping unnamed program", "pages", rec.Pages)
		return Outcome{Program: rec.Name, Status: StatusSkipped, Reason: "program has no name"}
	}

	handles, missing := ix.HandlesFor(rec.Pages)
	if len(missing) > 0 {
		e.log.Warn("pages unavailable for program", "name", rec.Name, "missing", missing)
	}
	if len(handles) == 0 {
		return Outcome{Program: rec.Name, Status: StatusSkipped, Reason: "no page images available"}
	}

	text, err := e.client.Generate(ctx, prompts.Extract(rec.Name, rec.Pages), handles)
	if err != nil {
		e.log.Error("extraction failed", "name", rec.Name, "error", err)
		return Outcome{Program: rec.Name, Status: StatusFailed, Reason: err.Error()}
	}

	if strings.TrimSpace(text) == "" {
		e.log.Warn("empty transcription", "name", rec.Name)
		return Outcome{Program: rec.Name, Status: StatusSkipped, Reason: "service returned no source text"}
	}

	path, err := e.save(rec.Name, text)
	if err != nil {
		e.log.Error("failed to write program file", "name", rec.Name, "error", err)
		return Outcome{Program: rec.Name, Status: StatusFailed, Reason: err.Error()}
	}

	e.log.Info("saved program", "name", rec.Name, "path", path)
	return Outcome{Program: rec.Name, Status: StatusSaved, Path: path}
}

// save writes the transcription as a markdown file named after the
// sanitized program name.
func (e *Extractor) save(name, text string) (string, error) {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.outDir, listing.Sanitize(name)+".md")
	content := fmt.Sprintf("# %s\n\n%s\n", name, strings.TrimSpace(text))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
