// Package pages maintains the local page image cache: raw downloads from
// the origin site and their normalized PNG counterparts.
package pages

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/jackzampolin/basicbook/internal/home"
)

// Config holds configuration for the page image cache.
type Config struct {
	// BaseURL plus the page number plus Extension forms the source URL.
	BaseURL   string
	Extension string

	// Pause is the fixed delay between successive downloads. It applies
	// to the origin site only; cache hits are never delayed.
	Pause time.Duration

	Home       *home.Dir
	Logger     *slog.Logger
	HTTPClient *http.Client // Optional (tests)
}

// Cache guarantees a local normalized image exists for a page, reusing any
// previously produced artifact. Raw and normalized files are never deleted
// by the pipeline, which is what makes repeated runs idempotent.
type Cache struct {
	baseURL string
	ext     string
	home    *home.Dir
	limiter *rate.Limiter
	client  *http.Client
	log     *slog.Logger
}

// PageFile is a page number together with its normalized image path.
type PageFile struct {
	Page int
	Path string
}

// Summary reports the outcome of a fetch stage over a page range.
type Summary struct {
	Available   []PageFile
	Cached      int
	Downloaded  int
	FetchErrs   []*FetchError
	ConvertErrs []*ConvertError
}

// New creates a page image cache.
func New(cfg Config) *Cache {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Pause > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Pause), 1)
	}

	return &Cache{
		baseURL: cfg.BaseURL,
		ext:     cfg.Extension,
		home:    cfg.Home,
		limiter: limiter,
		client:  httpClient,
		log:     log,
	}
}

// URL returns the source URL for a page.
func (c *Cache) URL(page int) string {
	return fmt.Sprintf("%s%d%s", c.baseURL, page, c.ext)
}

// SetPause adjusts the inter-download pause. Safe to call while a range is
// in flight; the next fetch picks up the new rate.
func (c *Cache) SetPause(pause time.Duration) {
	if pause > 0 {
		c.limiter.SetLimit(rate.Every(pause))
	} else {
		c.limiter.SetLimit(rate.Inf)
	}
	c.log.Info("download pause updated", "pause", pause)
}

// Path resolves a page number to its normalized image path, reporting
// whether the image exists on disk.
func (c *Cache) Path(page int) (string, bool) {
	path := c.home.PageImagePath(page)
	_, err := os.Stat(path)
	return path, err == nil
}

// Ensure guarantees a normalized image exists for the page and returns its
// path. A cache hit performs no network or conversion work.
func (c *Cache) Ensure(ctx context.Context, page int) (string, error) {
	if path, ok := c.Path(page); ok {
		c.log.Debug("using cached page image", "page", page, "path", path)
		return path, nil
	}

	rawPath, err := c.fetch(ctx, page)
	if err != nil {
		return "", err
	}
	return c.Convert(page, rawPath)
}

// EnsureRange ensures every page in [start, end], recording per-page
// failures without stopping. The summary carries everything the fetch
// stage reports at the end.
func (c *Cache) EnsureRange(ctx context.Context, start, end int) (*Summary, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid page range %d-%d: start must be >= 1 and <= end", start, end)
	}

	sum := &Summary{}
	for page := start; page <= end; page++ {
		if path, ok := c.Path(page); ok {
			c.log.Debug("using cached page image", "page", page, "path", path)
			sum.Cached++
			sum.Available = append(sum.Available, PageFile{Page: page, Path: path})
			continue
		}

		rawPath, err := c.fetch(ctx, page)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) {
				sum.FetchErrs = append(sum.FetchErrs, fetchErr)
			}
			c.log.Warn("page download failed", "page", page, "error", err)
			continue
		}
		sum.Downloaded++

		path, err := c.Convert(page, rawPath)
		if err != nil {
			var convErr *ConvertError
			if errors.As(err, &convErr) {
				sum.ConvertErrs = append(sum.ConvertErrs, convErr)
			}
			c.log.Warn("page conversion failed", "page", page, "error", err)
			continue
		}
		sum.Available = append(sum.Available, PageFile{Page: page, Path: path})
	}

	c.log.Info("fetch stage complete",
		"available", len(sum.Available),
		"cached", sum.Cached,
		"downloaded", sum.Downloaded,
		"fetch_errors", len(sum.FetchErrs),
		"convert_errors", len(sum.ConvertErrs),
	)
	return sum, nil
}

// ConvertRange converts already-downloaded raw images in [start, end]
// without any network activity. Pages with no raw file are skipped.
func (c *Cache) ConvertRange(start, end int) ([]PageFile, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid page range %d-%d: start must be >= 1 and <= end", start, end)
	}

	var converted []PageFile
	for page := start; page <= end; page++ {
		rawPath := c.home.RawImagePath(page, c.ext)
		if _, err := os.Stat(rawPath); err != nil {
			continue
		}
		path, err := c.Convert(page, rawPath)
		if err != nil {
			c.log.Warn("page conversion failed", "page", page, "error", err)
			continue
		}
		converted = append(converted, PageFile{Page: page, Path: path})
	}
	return converted, nil
}

// fetch downloads the raw image for a page, honoring the inter-download
// pause. Returns the raw file path.
func (c *Cache) fetch(ctx context.Context, page int) (string, error) {
	rawPath := c.home.RawImagePath(page, c.ext)
	if _, err := os.Stat(rawPath); err == nil {
		c.log.Debug("using cached raw image", "page", page, "path", rawPath)
		return rawPath, nil
	}

	url := c.URL(page)
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &FetchError{Page: page, URL: url, Err: err}
	}

	c.log.Debug("downloading page", "page", page, "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Page: page, URL: url, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &FetchError{Page: page, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Page: page, URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	f, err := os.Create(rawPath)
	if err != nil {
		return "", &FetchError{Page: page, URL: url, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(rawPath) // don't leave a truncated file behind
		return "", &FetchError{Page: page, URL: url, Err: err}
	}
	return rawPath, nil
}

// Convert normalizes a raw image to PNG, reusing an existing artifact.
func (c *Cache) Convert(page int, rawPath string) (string, error) {
	pngPath := c.home.PageImagePath(page)
	if _, err := os.Stat(pngPath); err == nil {
		return pngPath, nil
	}

	f, err := os.Open(rawPath)
	if err != nil {
		return "", &ConvertError{Page: page, Path: rawPath, Err: err}
	}
	defer f.Close()

	img, err := decodeImage(f)
	if err != nil {
		return "", &ConvertError{Page: page, Path: rawPath, Err: err}
	}

	out, err := os.Create(pngPath)
	if err != nil {
		return "", &ConvertError{Page: page, Path: rawPath, Err: err}
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(pngPath)
		return "", &ConvertError{Page: page, Path: rawPath, Err: err}
	}

	c.log.Debug("converted page image", "page", page, "from", rawPath, "to", pngPath)
	return pngPath, nil
}

// decodeImage decodes GIF sources directly and falls back to the generic
// decoder for anything else.
func decodeImage(f *os.File) (image.Image, error) {
	img, err := gif.Decode(f)
	if err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	img, _, err = image.Decode(f)
	return img, err
}
