package application

import (
	"context"
	"time"

	"fanhunt/domain/entities"
)

// MetricsRecorder receives ledger measurements. The observability package
// provides the OpenTelemetry implementation.
type MetricsRecorder interface {
	// RecordTransaction records one run of the transaction runner
	RecordTransaction(operation, outcome string, attempts int, duration time.Duration)

	// RecordRedemption records the outcome of a scan or reward redemption
	RecordRedemption(redemptionType, outcome string)
}

// LeaderboardCache stores leaderboard snapshots keyed by limit
type LeaderboardCache interface {
	// Get returns the cached entries and whether they were present
	Get(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, bool, error)

	// Set stores entries for the given limit
	Set(ctx context.Context, limit int, entries []*entities.LeaderboardEntry) error

	// Invalidate drops every cached snapshot
	Invalidate(ctx context.Context) error
}

// Outcome labels for metrics
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// OutcomeOf converts an operation result into a metrics label
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if kind := entities.KindOf(err); kind != "" {
		return kind.String()
	}
	return OutcomeError
}

type noopMetrics struct{}

func (noopMetrics) RecordTransaction(string, string, int, time.Duration) {}
func (noopMetrics) RecordRedemption(string, string)                      {}

// NoopMetrics returns a recorder that discards everything
func NoopMetrics() MetricsRecorder {
	return noopMetrics{}
}
