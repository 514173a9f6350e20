// Package locate implements phase 1 of the pipeline: asking the analysis
// service which program listings exist across a set of uploaded pages.
package locate

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackzampolin/basicbook/internal/listing"
	"github.com/jackzampolin/basicbook/internal/prompts"
	"github.com/jackzampolin/basicbook/internal/providers"
)

// fencedJSON matches a ```json code block in a generation response.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")

// Locator runs the program location phase.
type Locator struct {
	client providers.AnalysisClient
	log    *slog.Logger
}

// New creates a Locator.
func New(client providers.AnalysisClient, log *slog.Logger) *Locator {
	if log == nil {
		log = slog.Default()
	}
	return &Locator{client: client, log: log}
}

// Run issues one generation request over all uploaded page handles and
// parses the response into program records. A malformed response yields an
// empty list, not an error: a locate failure means "no programs found".
func (l *Locator) Run(ctx context.Context, handles []providers.Handle) ([]listing.Record, error) {
	l.log.Info("locating programs", "images", len(handles))

	text, err := l.client.Generate(ctx, prompts.Locate, handles)
	if err != nil {
		return nil, err
	}

	records := Parse(text)
	if len(records) == 0 && strings.TrimSpace(text) != "" {
		l.log.Warn("no program records parsed from response", "response_bytes", len(text))
	}
	l.log.Info("location phase complete", "programs", len(records))
	return records, nil
}

// Parse extracts program records from a generation response. The JSON body
// is taken from a fenced ```json block when present, otherwise the whole
// response is treated as JSON. Any parse failure returns an empty list.
func Parse(text string) []listing.Record {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	body := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		body = m[1]
	}

	var file listing.File
	if err := json.Unmarshal([]byte(body), &file); err != nil {
		return nil
	}

	for i := range file.Programs {
		file.Programs[i].Normalize()
	}
	return file.Programs
}
