// Package quota tracks remote request counts per UTC day so the client can
// fail fast once the upstream API's daily allowance is spent instead of
// burning a doomed network call.
package quota

import (
	"context"
	"time"
)

// Counter abstracts where the per-day counts live.
// Use Local (default) for in-process counts, or Redis to share the budget
// across processes and survive restarts.
type Counter interface {
	// Used returns the count recorded for the day; missing => 0.
	Used(ctx context.Context, day string) (uint64, error)
	// Record atomically increments the day's count and returns the new value.
	Record(ctx context.Context, day string) (uint64, error)
	// Cleanup prunes old days if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}

// Day formats t as the UTC day key counters are bucketed by.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
