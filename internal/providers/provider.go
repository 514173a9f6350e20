// Package providers contains the clients for remote multimodal analysis
// services. It is the sole boundary to the external service: all
// provider-specific vocabulary stays inside the concrete clients.
package providers

import (
	"context"
	"fmt"
)

// Handle is an opaque reference to an uploaded page image held by the
// remote service for the duration of one run. The component that uploads
// a handle owns it and must release it exactly once before the run ends.
type Handle struct {
	// Name identifies the remote file (e.g. "files/abc123" for Gemini,
	// a file ID for OpenAI).
	Name string

	// URI is the provider-side reference used in generation requests.
	// Empty for providers that address files by Name alone.
	URI string

	// MIMEType of the uploaded file.
	MIMEType string
}

// FileState is the lifecycle state of an uploaded file.
type FileState string

const (
	StatePending    FileState = "PENDING"
	StateProcessing FileState = "PROCESSING"
	StateReady      FileState = "READY"
	StateFailed     FileState = "FAILED"
)

// Terminal reports whether the state is final.
func (s FileState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// AnalysisClient is the contract every analysis backend implements.
//
// Upload blocks until the remote file reaches a terminal state, polling on
// a fixed interval. Generate is a stateless request that returns the raw
// response text unmodified. Delete is best-effort: callers log failures and
// never escalate them, since cleanup must not abort a run.
type AnalysisClient interface {
	Upload(ctx context.Context, path string) (Handle, error)
	Generate(ctx context.Context, prompt string, handles []Handle) (string, error)
	Delete(ctx context.Context, handle Handle) error

	// Name returns the client identifier (e.g. "gemini").
	Name() string
}

// UploadError reports an upload that reached a failed terminal state or
// could not be performed at all.
type UploadError struct {
	Path  string
	State FileState
	Err   error
}

func (e *UploadError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("upload of %s reached state %s: %v", e.Path, e.State, e.Err)
	}
	return fmt.Sprintf("upload of %s failed: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// GenerationError reports a failed generation request.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
