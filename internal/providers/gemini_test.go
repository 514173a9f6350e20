package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// writeTestImage creates a small file to upload in tests.
func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page1.png")
	if err := os.WriteFile(path, []byte("not-a-real-png"), 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func newTestGeminiClient(serverURL string) *GeminiClient {
	return NewGeminiClient(GeminiConfig{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		PollInterval: time.Millisecond,
	})
}

func TestGeminiClient_Upload(t *testing.T) {
	var polls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload/v1beta/files":
			if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
				t.Errorf("api key header = %q, want %q", got, "test-key")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"file": map[string]any{
					"name":     "files/abc123",
					"uri":      "https://example.com/files/abc123",
					"state":    "PROCESSING",
					"mimeType": "image/png",
				},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/files/abc123":
			state := "PROCESSING"
			if polls.Add(1) >= 2 {
				state = "ACTIVE"
			}
			json.NewEncoder(w).Encode(map[string]any{
				"name":     "files/abc123",
				"uri":      "https://example.com/files/abc123",
				"state":    state,
				"mimeType": "image/png",
			})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	handle, err := client.Upload(t.Context(), writeTestImage(t))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if handle.Name != "files/abc123" {
		t.Errorf("handle.Name = %q, want %q", handle.Name, "files/abc123")
	}
	if handle.URI != "https://example.com/files/abc123" {
		t.Errorf("handle.URI = %q", handle.URI)
	}
	if polls.Load() < 2 {
		t.Errorf("poll count = %d, want at least 2", polls.Load())
	}
}

func TestGeminiClient_Upload_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{
				"file": map[string]any{"name": "files/bad", "state": "PROCESSING"},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{"name": "files/bad", "state": "FAILED"})
		}
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Upload(t.Context(), writeTestImage(t))
	if err == nil {
		t.Fatal("Upload() error = nil, want failure")
	}

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("error type = %T, want *UploadError", err)
	}
}

func TestGeminiClient_Upload_ImmediatelyActive(t *testing.T) {
	var polls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{
				"file": map[string]any{
					"name":     "files/fast",
					"uri":      "https://example.com/files/fast",
					"state":    "ACTIVE",
					"mimeType": "image/png",
				},
			})
			return
		}
		polls.Add(1)
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	if _, err := client.Upload(t.Context(), writeTestImage(t)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if polls.Load() != 0 {
		t.Errorf("poll count = %d, want 0 for immediately active file", polls.Load())
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req geminiGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 {
			t.Fatalf("contents count = %d, want 1", len(req.Contents))
		}
		parts := req.Contents[0].Parts
		if len(parts) != 3 {
			t.Fatalf("parts count = %d, want 3 (prompt + 2 files)", len(parts))
		}
		if parts[0].Text == "" {
			t.Error("first part should carry the prompt text")
		}
		if parts[1].FileData == nil || parts[1].FileData.FileURI == "" {
			t.Error("file parts should carry file_data with a uri")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "10 PRINT \"HELLO\"\n"},
					{"text": "20 GOTO 10"},
				}}},
			},
		})
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	handles := []Handle{
		{Name: "files/a", URI: "uri-a", MIMEType: "image/png"},
		{Name: "files/b", URI: "uri-b", MIMEType: "image/png"},
	}

	text, err := client.Generate(t.Context(), "extract the program", handles)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := "10 PRINT \"HELLO\"\n20 GOTO 10"
	if text != want {
		t.Errorf("Generate() = %q, want %q", text, want)
	}
}

func TestGeminiClient_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid argument", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Generate(t.Context(), "prompt", nil)
	if err == nil {
		t.Fatal("Generate() error = nil, want API error")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T, want *GenerationError", err)
	}
	if !strings.Contains(err.Error(), "invalid argument") {
		t.Errorf("error %q should surface the API message", err)
	}
}

func TestGeminiClient_Delete(t *testing.T) {
	var deleted atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/v1beta/files/abc123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		deleted.Add(1)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	if err := client.Delete(t.Context(), Handle{Name: "files/abc123"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.Load() != 1 {
		t.Errorf("delete count = %d, want 1", deleted.Load())
	}
}

func TestGeminiClient_Upload_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{
				"file": map[string]any{"name": "files/slow", "state": "PROCESSING"},
			})
			return
		}
		// Never leaves PROCESSING.
		json.NewEncoder(w).Encode(map[string]any{"name": "files/slow", "state": "PROCESSING"})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	client := newTestGeminiClient(server.URL)
	_, err := client.Upload(ctx, writeTestImage(t))
	if err == nil {
		t.Fatal("Upload() error = nil, want context error for stuck upload")
	}
}

func TestMapGeminiState(t *testing.T) {
	tests := []struct {
		remote string
		want   FileState
	}{
		{"ACTIVE", StateReady},
		{"PROCESSING", StateProcessing},
		{"FAILED", StateFailed},
		{"STATE_UNSPECIFIED", StatePending},
		{"", StatePending},
	}
	for _, tt := range tests {
		if got := mapGeminiState(tt.remote); got != tt.want {
			t.Errorf("mapGeminiState(%q) = %v, want %v", tt.remote, got, tt.want)
		}
	}
}
