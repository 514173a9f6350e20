// Package pipeline orchestrates the two-phase extraction run: ensure page
// images locally, upload them, locate programs, extract each program's
// source, and release every remote file before returning.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/jackzampolin/basicbook/internal/extract"
	"github.com/jackzampolin/basicbook/internal/home"
	"github.com/jackzampolin/basicbook/internal/listing"
	"github.com/jackzampolin/basicbook/internal/locate"
	"github.com/jackzampolin/basicbook/internal/pageindex"
	"github.com/jackzampolin/basicbook/internal/pages"
	"github.com/jackzampolin/basicbook/internal/providers"
)

// Config holds the pipeline's collaborators.
type Config struct {
	Cache  *pages.Cache
	Client providers.AnalysisClient
	Home   *home.Dir

	// OutputDir overrides where program markdown files are written.
	// Defaults to the home programs directory.
	OutputDir string

	Logger *slog.Logger
}

// Pipeline wires the page cache, the analysis client, and the home
// directory into runnable phases. All work is strictly sequential.
type Pipeline struct {
	cache  *pages.Cache
	client providers.AnalysisClient
	home   *home.Dir
	outDir string
	log    *slog.Logger
}

// Report summarizes one run. It is persisted as JSON under the
// transcriptions directory, keyed by run ID.
type Report struct {
	RunID    string            `json:"run_id"`
	Programs []extract.Outcome `json:"programs"`
	Saved    int               `json:"saved"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	ListPath string            `json:"program_list,omitempty"` // Program list written by the locate phase, if any.

	ReportPath string `json:"-"` // Where this report was written.
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = cfg.Home.ProgramsDir()
	}
	return &Pipeline{
		cache:  cfg.Cache,
		client: cfg.Client,
		home:   cfg.Home,
		outDir: outDir,
		log:    log,
	}
}

// Run executes both phases over a page range: fetch, upload, locate,
// extract, report. Every uploaded file is deleted before Run returns,
// on success and on failure alike.
func (p *Pipeline) Run(ctx context.Context, startPage, endPage int) (*Report, error) {
	runID := uuid.New().String()
	log := p.log.With("run_id", runID)
	log.Info("starting run", "start_page", startPage, "end_page", endPage, "provider", p.client.Name())

	if err := p.home.EnsureExists(); err != nil {
		return nil, err
	}

	agg := extract.NewAggregator(p.client, log)
	// Remote files outlive any single phase; release them even when the
	// run is cancelled mid-flight.
	defer agg.Cleanup(context.WithoutCancel(ctx))

	ix, err := p.uploadRange(ctx, agg, startPage, endPage, log)
	if err != nil {
		return nil, err
	}

	records, err := p.locateAndSave(ctx, ix, log)
	if err != nil {
		return nil, err
	}

	extractor := extract.New(p.client, p.outDir, log)
	agg.Record(extractor.Run(ctx, records, ix)...)

	saved, skipped, failed := agg.Report()
	report := &Report{
		RunID:    runID,
		Programs: agg.Outcomes(),
		Saved:    saved,
		Skipped:  skipped,
		Failed:   failed,
		ListPath: p.home.ProgramListPath(),
	}
	p.saveReport(report, log)
	return report, nil
}

// LocateOnly runs phase 1 alone and persists the program list for a later
// extract run.
func (p *Pipeline) LocateOnly(ctx context.Context, startPage, endPage int) ([]listing.Record, error) {
	runID := uuid.New().String()
	log := p.log.With("run_id", runID)
	log.Info("starting locate run", "start_page", startPage, "end_page", endPage, "provider", p.client.Name())

	if err := p.home.EnsureExists(); err != nil {
		return nil, err
	}

	agg := extract.NewAggregator(p.client, log)
	defer agg.Cleanup(context.WithoutCancel(ctx))

	ix, err := p.uploadRange(ctx, agg, startPage, endPage, log)
	if err != nil {
		return nil, err
	}
	return p.locateAndSave(ctx, ix, log)
}

// ExtractOnly runs phase 2 against a previously saved program list. Only
// the distinct pages the list references are uploaded.
func (p *Pipeline) ExtractOnly(ctx context.Context, listPath string) (*Report, error) {
	runID := uuid.New().String()
	log := p.log.With("run_id", runID)

	records, err := listing.Load(listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load program list: %w", err)
	}
	pageNums := listing.UniquePages(records)
	log.Info("starting extract run", "list", listPath, "programs", len(records), "pages", len(pageNums), "provider", p.client.Name())

	if err := p.home.EnsureExists(); err != nil {
		return nil, err
	}

	agg := extract.NewAggregator(p.client, log)
	defer agg.Cleanup(context.WithoutCancel(ctx))

	ix := pageindex.BuildSelective(ctx, p.client, p.cache, pageNums, log)
	agg.Track(ix.Handles()...)

	extractor := extract.New(p.client, p.outDir, log)
	agg.Record(extractor.Run(ctx, records, ix)...)

	saved, skipped, failed := agg.Report()
	report := &Report{
		RunID:    runID,
		Programs: agg.Outcomes(),
		Saved:    saved,
		Skipped:  skipped,
		Failed:   failed,
	}
	p.saveReport(report, log)
	return report, nil
}

// saveReport persists the run report under the transcriptions directory.
// A write failure is logged, not escalated: the run itself succeeded and
// the report was already emitted through the logs.
func (p *Pipeline) saveReport(report *Report, log *slog.Logger) {
	if report.Programs == nil {
		report.Programs = []extract.Outcome{}
	}

	path := p.home.RunReportPath(report.RunID)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Warn("failed to marshal run report", "error", err)
		return
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		log.Warn("failed to write run report", "path", path, "error", err)
		return
	}
	report.ReportPath = path
	log.Info("run report saved", "path", path)
}

// uploadRange ensures the page range locally and uploads every available
// image, tagging each upload with its page number. Pages that fail to
// download or upload are logged and omitted.
func (p *Pipeline) uploadRange(ctx context.Context, agg *extract.Aggregator, startPage, endPage int, log *slog.Logger) (pageindex.Index, error) {
	sum, err := p.cache.EnsureRange(ctx, startPage, endPage)
	if err != nil {
		return nil, err
	}
	if len(sum.Available) == 0 {
		return nil, fmt.Errorf("no page images available in range %d-%d", startPage, endPage)
	}

	var uploads []pageindex.Upload
	for _, pf := range sum.Available {
		handle, err := p.client.Upload(ctx, pf.Path)
		if err != nil {
			log.Warn("page upload failed", "page", pf.Page, "error", err)
			continue
		}
		agg.Track(handle)
		uploads = append(uploads, pageindex.Upload{Page: pf.Page, Handle: handle})
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("no page images uploaded in range %d-%d", startPage, endPage)
	}

	log.Info("upload stage complete", "uploaded", len(uploads), "available", len(sum.Available))
	return pageindex.FromUploads(uploads), nil
}

// locateAndSave runs the location phase and persists the program list.
func (p *Pipeline) locateAndSave(ctx context.Context, ix pageindex.Index, log *slog.Logger) ([]listing.Record, error) {
	records, err := locate.New(p.client, log).Run(ctx, ix.Handles())
	if err != nil {
		return nil, err
	}

	if err := listing.Save(p.home.ProgramListPath(), records); err != nil {
		return nil, fmt.Errorf("failed to save program list: %w", err)
	}
	log.Info("program list saved", "path", p.home.ProgramListPath(), "programs", len(records))
	return records, nil
}
