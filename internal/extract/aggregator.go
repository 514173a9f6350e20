package extract

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/basicbook/internal/providers"
)

// Aggregator tracks uploaded handles and per-program outcomes for one run.
// Cleanup must be called on every exit path, after all programs have been
// attempted; it deletes each tracked handle exactly once.
type Aggregator struct {
	client   providers.AnalysisClient
	log      *slog.Logger
	handles  []providers.Handle
	tracked  map[string]bool
	outcomes []Outcome
	cleaned  bool
}

// NewAggregator creates an Aggregator that releases handles via client.
func NewAggregator(client providers.AnalysisClient, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{client: client, log: log, tracked: make(map[string]bool)}
}

// Track registers a handle for end-of-run cleanup. Tracking the same
// handle twice is a no-op.
func (a *Aggregator) Track(handles ...providers.Handle) {
	for _, h := range handles {
		if a.tracked[h.Name] {
			continue
		}
		a.tracked[h.Name] = true
		a.handles = append(a.handles, h)
	}
}

// Record appends outcomes to the run report.
func (a *Aggregator) Record(outcomes ...Outcome) {
	a.outcomes = append(a.outcomes, outcomes...)
}

// Outcomes returns the recorded outcomes in order.
func (a *Aggregator) Outcomes() []Outcome {
	return a.outcomes
}

// Report summarizes the run: one log line per non-saved program and a
// final tally. It returns the counts for callers that surface them.
func (a *Aggregator) Report() (saved, skipped, failed int) {
	for _, o := range a.outcomes {
		switch o.Status {
		case StatusSaved:
			saved++
		case StatusSkipped:
			skipped++
			a.log.Warn("program skipped", "name", o.Program, "reason", o.Reason)
		case StatusFailed:
			failed++
			a.log.Error("program failed", "name", o.Program, "reason", o.Reason)
		}
	}
	a.log.Info("run complete", "programs", len(a.outcomes), "saved", saved, "skipped", skipped, "failed", failed)
	return saved, skipped, failed
}

// Cleanup deletes every tracked handle from the remote service. Each
// handle is deleted at most once even if Cleanup is called again; delete
// failures are logged and never propagated.
func (a *Aggregator) Cleanup(ctx context.Context) {
	if a.cleaned {
		return
	}
	a.cleaned = true

	for _, h := range a.handles {
		if err := a.client.Delete(ctx, h); err != nil {
			a.log.Warn("failed to delete remote file", "handle", h.Name, "error", err)
			continue
		}
		a.log.Debug("deleted remote file", "handle", h.Name)
	}
	a.log.Info("cleanup complete", "files", len(a.handles))
}
