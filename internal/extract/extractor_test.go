package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/basicbook/internal/listing"
	"github.com/jackzampolin/basicbook/internal/pageindex"
	"github.com/jackzampolin/basicbook/internal/providers"
)

func testIndex(pages ...int) pageindex.Index {
	ix := make(pageindex.Index, len(pages))
	for i, p := range pages {
		ix[p] = providers.Handle{Name: "files/page" + string(rune('a'+i)), URI: "mock://page", MIMEType: "image/png"}
	}
	return ix
}

func TestExtract_Saved(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Response = "```basic\n10 PRINT \"HELLO\"\n20 GOTO 10\n```"

	dir := t.TempDir()
	ex := New(mock, dir, nil)

	rec := listing.Record{Name: "Hello Loop", Pages: []int{1, 2}}
	outcome := ex.Extract(t.Context(), rec, testIndex(1, 2))

	if outcome.Status != StatusSaved {
		t.Fatalf("status = %s (%s), want saved", outcome.Status, outcome.Reason)
	}
	if want := filepath.Join(dir, "hello-loop.md"); outcome.Path != want {
		t.Errorf("path = %s, want %s", outcome.Path, want)
	}

	data, err := os.ReadFile(outcome.Path)
	if err != nil {
		t.Fatalf("failed to read program file: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# Hello Loop\n\n") {
		t.Errorf("file should start with title header, got %q", content[:min(30, len(content))])
	}
	if !strings.Contains(content, "10 PRINT") {
		t.Error("file missing transcribed source")
	}
	if !mock.LastPromptContains("'Hello Loop'") {
		t.Error("prompt should name the program")
	}
}

func TestExtract_UnnamedSkippedWithoutCall(t *testing.T) {
	mock := providers.NewMockClient()
	ex := New(mock, t.TempDir(), nil)

	outcome := ex.Extract(t.Context(), listing.Record{Pages: []int{1}}, testIndex(1))

	if outcome.Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped", outcome.Status)
	}
	if outcome.Reason != "program has no name" {
		t.Errorf("reason = %q", outcome.Reason)
	}
	if mock.GenerateCount() != 0 {
		t.Errorf("generate calls = %d, want 0 for unnamed program", mock.GenerateCount())
	}
}

func TestExtract_AllPagesMissingSkippedWithoutCall(t *testing.T) {
	mock := providers.NewMockClient()
	ex := New(mock, t.TempDir(), nil)

	rec := listing.Record{Name: "Ghost", Pages: []int{7, 8}}
	outcome := ex.Extract(t.Context(), rec, pageindex.Index{})

	if outcome.Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped", outcome.Status)
	}
	if mock.GenerateCount() != 0 {
		t.Errorf("generate calls = %d, want 0 when no pages are available", mock.GenerateCount())
	}
}

func TestExtract_PartialPagesStillExtracts(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Response = "10 END"
	ex := New(mock, t.TempDir(), nil)

	rec := listing.Record{Name: "Partial", Pages: []int{1, 2}}
	outcome := ex.Extract(t.Context(), rec, testIndex(1))

	if outcome.Status != StatusSaved {
		t.Fatalf("status = %s, want saved with remaining pages", outcome.Status)
	}
	if mock.GenerateCount() != 1 {
		t.Errorf("generate calls = %d, want 1", mock.GenerateCount())
	}
}

func TestExtract_EmptyTranscriptionSkipped(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Response = "   \n\t  "
	ex := New(mock, t.TempDir(), nil)

	rec := listing.Record{Name: "Blank", Pages: []int{1}}
	outcome := ex.Extract(t.Context(), rec, testIndex(1))

	if outcome.Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped for empty transcription", outcome.Status)
	}
}

func TestExtract_GenerationFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.GenerateErr = errors.New("rate limited")
	ex := New(mock, t.TempDir(), nil)

	rec := listing.Record{Name: "Doomed", Pages: []int{1}}
	outcome := ex.Extract(t.Context(), rec, testIndex(1))

	if outcome.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", outcome.Status)
	}
	if !strings.Contains(outcome.Reason, "rate limited") {
		t.Errorf("reason = %q, should carry underlying error", outcome.Reason)
	}
}

func TestRun_FailureDoesNotStopLaterPrograms(t *testing.T) {
	mock := providers.NewMockClient()
	mock.GenerateErrAt = 1
	mock.Response = "10 PRINT \"OK\""
	ex := New(mock, t.TempDir(), nil)

	records := []listing.Record{
		{Name: "First", Pages: []int{1}},
		{Name: "Second", Pages: []int{2}},
	}
	outcomes := ex.Run(t.Context(), records, testIndex(1, 2))

	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	if outcomes[0].Status != StatusFailed {
		t.Errorf("first status = %s, want failed", outcomes[0].Status)
	}
	if outcomes[1].Status != StatusSaved {
		t.Errorf("second status = %s, want saved", outcomes[1].Status)
	}
}
