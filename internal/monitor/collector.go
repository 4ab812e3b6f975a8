// Package monitor periodically polls running VPSes for resource usage,
// accumulates deltas into the current billing period, and stops VPSes whose
// owner has exhausted both their plan and their overage budget.
package monitor

import (
	"context"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

// Metrics is a single poll's snapshot for one VPS. CpuUsedMs and
// MemoryUsedMbSeconds are absolute counters, not deltas — the monitor
// computes deltas itself against the VPS row's last-seen value.
type Metrics struct {
	StorageUsedBytes    int64
	CpuUsedMs           *int64
	MemoryUsedMbSeconds *int64
}

// Collector gathers current resource metrics for a single VPS from
// whatever backend actually tracks them (a provider API, an on-VPS agent,
// a metrics scraper). Implementations must be safe for concurrent use.
type Collector interface {
	Collect(ctx context.Context, vps sqlc.Vps) (Metrics, error)
}

// StubCollector returns each VPS's own last-recorded values unchanged,
// producing zero deltas. Useful before a real metrics backend exists, and
// in tests that only exercise the enforcement path.
type StubCollector struct{}

func (StubCollector) Collect(ctx context.Context, vps sqlc.Vps) (Metrics, error) {
	m := Metrics{StorageUsedBytes: vps.StorageUsedBytes}
	if vps.CpuUsedMs.Valid {
		v := vps.CpuUsedMs.Int64
		m.CpuUsedMs = &v
	}
	if vps.MemoryUsedMbSeconds.Valid {
		v := vps.MemoryUsedMbSeconds.Int64
		m.MemoryUsedMbSeconds = &v
	}
	return m, nil
}
