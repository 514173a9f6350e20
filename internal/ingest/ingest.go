// Package ingest renders PDF book scans into the local page cache as an
// alternative to downloading page images from an archive. Pages land in
// the same pages/ directory the pipeline reads, named page<N>.png.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/basicbook/internal/home"
)

// Request contains the parameters for ingesting a scanned book.
type Request struct {
	PDFPaths  []string     // PDF file paths (sorted by numeric suffix)
	StartPage int          // Page number assigned to the first rendered page (default 1)
	Logger    *slog.Logger // Optional logger for progress updates
}

// Result reports a completed ingest.
type Result struct {
	PageCount int
	FirstPage int
	LastPage  int
}

// Ingest renders every page of the given PDFs into the home pages
// directory. Multi-part PDFs are numbered continuously in part order.
func Ingest(ctx context.Context, homeDir *home.Dir, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.PDFPaths) == 0 {
		return nil, fmt.Errorf("no PDF paths provided")
	}
	for _, p := range req.PDFPaths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("PDF not found: %s", p)
		}
	}

	if err := homeDir.EnsureExists(); err != nil {
		return nil, err
	}

	firstPage := req.StartPage
	if firstPage < 1 {
		firstPage = 1
	}

	sortedPaths := sortPDFsByNumber(req.PDFPaths)
	log.Info("starting ingest", "pdfs", len(sortedPaths), "start_page", firstPage)

	pageCount := 0
	for i, pdfPath := range sortedPaths {
		log.Debug("rendering PDF", "file", filepath.Base(pdfPath), "part", i+1, "of", len(sortedPaths))
		count, err := renderPDF(ctx, pdfPath, homeDir, firstPage+pageCount-1)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", pdfPath, err)
		}
		log.Debug("rendered pages", "count", count, "total", pageCount+count)
		pageCount += count
	}

	if pageCount == 0 {
		return nil, fmt.Errorf("no pages rendered from PDFs")
	}

	res := &Result{
		PageCount: pageCount,
		FirstPage: firstPage,
		LastPage:  firstPage + pageCount - 1,
	}
	log.Info("ingest complete", "pages", res.PageCount, "first", res.FirstPage, "last", res.LastPage)
	return res, nil
}

// renderPDF renders all pages of one PDF into the page cache. pageOffset
// is added to each in-PDF page number to get the cache page number.
func renderPDF(ctx context.Context, pdfPath string, homeDir *home.Dir, pageOffset int) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}

	maxWorkers := runtime.NumCPU()

	type result struct {
		pageNum int
		err     error
	}

	results := make(chan result, pageCount)
	sem := make(chan struct{}, maxWorkers)

	for page := 1; page <= pageCount; page++ {
		sem <- struct{}{} // acquire
		go func(pageInPDF int) {
			defer func() { <-sem }() // release

			dst := homeDir.PageImagePath(pageOffset + pageInPDF)
			err := renderPage(ctx, pdfPath, pageInPDF, dst)
			results <- result{pageNum: pageInPDF, err: err}
		}(page)
	}

	for i := 0; i < pageCount; i++ {
		r := <-results
		if r.err != nil {
			return 0, fmt.Errorf("failed to render page %d: %w", r.pageNum, r.err)
		}
	}

	return pageCount, nil
}

// renderPage renders a single PDF page to dst using pdftoppm (poppler-utils).
func renderPage(ctx context.Context, pdfPath string, pageInPDF int, dst string) error {
	tmpDir, err := os.MkdirTemp("", "basicbook-page-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -singlefile keeps pdftoppm from appending a page suffix.
	pageStr := strconv.Itoa(pageInPDF)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", "300",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	srcPath := outputPrefix + ".png"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write page image: %w", err)
	}
	return nil
}

var pdfPartSuffix = regexp.MustCompile(`-(\d+)\.pdf$`)

// sortPDFsByNumber sorts PDF paths by their numeric suffix so multi-part
// scans render in order: book-1.pdf, book-2.pdf, book-10.pdf.
func sortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.Slice(sorted, func(i, j int) bool {
		mi := pdfPartSuffix.FindStringSubmatch(sorted[i])
		mj := pdfPartSuffix.FindStringSubmatch(sorted[j])

		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			return ni < nj
		}

		// Files without numbers come first.
		if len(mi) > 1 {
			return false
		}
		if len(mj) > 1 {
			return true
		}

		return sorted[i] < sorted[j]
	})

	return sorted
}
