// Package listing defines program records: the location phase's structured
// description of one BASIC listing found in the scanned pages.
package listing

import (
	"regexp"
	"sort"
	"strings"
)

// Record describes one program listing. Pages are in the order the service
// reported them, deduplicated, and need not be contiguous; different
// records may reference the same page.
type Record struct {
	Name        string `json:"name"`
	Pages       []int  `json:"pages"`
	Description string `json:"description,omitempty"`
}

// Normalize deduplicates the record's pages, preserving first-seen order.
func (r *Record) Normalize() {
	seen := make(map[int]bool, len(r.Pages))
	pages := r.Pages[:0]
	for _, p := range r.Pages {
		if seen[p] {
			continue
		}
		seen[p] = true
		pages = append(pages, p)
	}
	r.Pages = pages
}

// UniquePages returns the sorted union of page numbers across all records.
// This is the upload set for selective mapping: total uploads never exceed
// the number of distinct pages referenced, regardless of how many records
// share a page.
func UniquePages(records []Record) []int {
	seen := make(map[int]bool)
	for _, r := range records {
		for _, p := range r.Pages {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Sanitize converts a program name to a filesystem-safe slug: lowercase,
// with runs of non-alphanumeric characters collapsed to a single hyphen.
// "Guess The Number!" becomes "guess-the-number".
func Sanitize(name string) string {
	s := nonAlnumRuns.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
