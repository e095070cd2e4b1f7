package storage

import (
	"context"
	"time"
)

// Run is one execution of a transfer.
type Run struct {
	ID          string
	Mode        string
	SourceTaxon string
	TargetTaxon string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	OutputPath  string
	Counters    map[string]float64
	Error       string
}

// Rejection is a source record the filter turned away.
type Rejection struct {
	Bucket     string
	Subject    string
	Object     string
	Evidence   string
	ProvidedBy string
}

// Skip is a record the rewriter could not transfer.
type Skip struct {
	Reason  string
	Subject string
	Target  string
	Object  string
}

// Store combines run bookkeeping and per-record diagnostics.
type Store interface {
	RunStore
	DiagnosticsStore
	Close() error
}

// RunStore persists run metadata.
type RunStore interface {
	// BeginRun inserts a run in status "running".
	BeginRun(ctx context.Context, run *Run) error

	// FinishRun records the outcome of a run.
	FinishRun(ctx context.Context, run *Run) error

	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}

// DiagnosticsStore persists rejected and skipped records.
type DiagnosticsStore interface {
	SaveRejections(ctx context.Context, runID string, items []Rejection) error
	SaveSkips(ctx context.Context, runID string, items []Skip) error

	// RejectionCounts groups a run's rejections by bucket.
	RejectionCounts(ctx context.Context, runID string) (map[string]int, error)

	// SkipCounts groups a run's skips by reason.
	SkipCounts(ctx context.Context, runID string) (map[string]int, error)

	// Skips lists a run's skips, up to limit.
	Skips(ctx context.Context, runID string, limit int) ([]Skip, error)
}
