// Package extract implements phase 2 of the pipeline: transcribing the
// source of each located program and recording a per-program outcome.
package extract

// Status classifies how extraction ended for one program. Every program
// from the location phase lands in exactly one of the three buckets.
type Status string

const (
	// StatusSaved means source was extracted and written to disk.
	StatusSaved Status = "saved"

	// StatusSkipped means the program was passed over without a failure:
	// it had no name, none of its pages were available, or the service
	// returned no source text.
	StatusSkipped Status = "skipped"

	// StatusFailed means the generation request itself failed.
	StatusFailed Status = "failed"
)

// Outcome is the result of one program's extraction attempt.
type Outcome struct {
	Program string `json:"program"`
	Status  Status `json:"status"`
	Reason  string `json:"reason,omitempty"` // Why the program was skipped or failed; empty for saved.
	Path    string `json:"path,omitempty"`   // Output file for saved programs.
}
