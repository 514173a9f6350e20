// Package pageindex resolves page numbers to remote handles for the
// extraction phase. Every upload result carries its page number explicitly,
// so the mapping never depends on slice position: a failed upload in the
// middle of a batch cannot shift the pages that follow it.
package pageindex

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jackzampolin/basicbook/internal/providers"
)

// PageSource resolves a page number to a local image path, reporting
// whether the image exists on disk.
type PageSource interface {
	Path(page int) (string, bool)
}

// Upload pairs a page number with the handle produced by uploading it.
type Upload struct {
	Page   int
	Handle providers.Handle
}

// Index maps page numbers to remote handles. It holds at most one handle
// per page; pages missing from the index were unavailable, not errors.
type Index map[int]providers.Handle

// FromUploads builds an index from tagged upload results. The first handle
// for a page wins; later duplicates are ignored so no page ever has more
// than one upload.
func FromUploads(uploads []Upload) Index {
	ix := make(Index, len(uploads))
	for _, u := range uploads {
		if _, ok := ix[u.Page]; ok {
			continue
		}
		ix[u.Page] = u.Handle
	}
	return ix
}

// BuildSelective uploads only the local images that exist for the given
// page numbers and builds the index from the uploads that succeed. Missing
// images and failed uploads omit the page rather than failing resolution.
// Total uploads never exceed the number of distinct pages requested.
func BuildSelective(ctx context.Context, client providers.AnalysisClient, source PageSource, pageNums []int, log *slog.Logger) Index {
	if log == nil {
		log = slog.Default()
	}

	ix := make(Index, len(pageNums))
	var missing []int
	for _, page := range pageNums {
		if _, ok := ix[page]; ok {
			continue
		}

		path, ok := source.Path(page)
		if !ok {
			missing = append(missing, page)
			continue
		}

		handle, err := client.Upload(ctx, path)
		if err != nil {
			log.Warn("page upload failed", "page", page, "error", err)
			continue
		}
		ix[page] = handle
		log.Debug("uploaded page", "page", page, "handle", handle.Name)
	}

	if len(missing) > 0 {
		log.Warn("pages missing from local cache", "pages", missing)
	}
	log.Info("selective upload complete", "uploaded", len(ix), "requested", len(pageNums), "missing", len(missing))
	return ix
}

// HandlesFor returns the handles for the given pages in their declared
// order, together with the pages absent from the index.
func (ix Index) HandlesFor(pageNums []int) ([]providers.Handle, []int) {
	var handles []providers.Handle
	var missing []int
	for _, page := range pageNums {
		if h, ok := ix[page]; ok {
			handles = append(handles, h)
		} else {
			missing = append(missing, page)
		}
	}
	return handles, missing
}

// Handles returns all handles ordered by page number.
func (ix Index) Handles() []providers.Handle {
	pages := ix.Pages()
	handles := make([]providers.Handle, 0, len(pages))
	for _, page := range pages {
		handles = append(handles, ix[page])
	}
	return handles
}

// Pages returns the indexed page numbers in ascending order.
func (ix Index) Pages() []int {
	pages := make([]int, 0, len(ix))
	for page := range ix {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}
