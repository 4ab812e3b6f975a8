package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// AddBandwidth atomically increments bandwidth for the VPS's current
// calendar-month usage row, creating it if absent. This is the upsert the
// forward proxy flushes into on every connection close.
const addBandwidth = `
INSERT INTO vps_usage_periods (vps_id, period_start, bandwidth_bytes)
VALUES ($1, date_trunc('month', now())::date, $2)
ON CONFLICT (vps_id, period_start)
DO UPDATE SET bandwidth_bytes = vps_usage_periods.bandwidth_bytes + EXCLUDED.bandwidth_bytes,
              updated_at = now()
`

func (q *Queries) AddBandwidth(ctx context.Context, vpsID pgtype.UUID, bytes int64) error {
	_, err := q.db.Exec(ctx, addBandwidth, vpsID, bytes)
	return err
}

// AddCpuMemory atomically increments CPU and memory deltas for the current
// calendar-month usage row. This is the write path the monitor's poll tick
// uses.
const addCpuMemory = `
INSERT INTO vps_usage_periods (vps_id, period_start, cpu_used_ms, memory_used_mb_seconds)
VALUES ($1, date_trunc('month', now())::date, $2, $3)
ON CONFLICT (vps_id, period_start)
DO UPDATE SET cpu_used_ms = vps_usage_periods.cpu_used_ms + EXCLUDED.cpu_used_ms,
              memory_used_mb_seconds = vps_usage_periods.memory_used_mb_seconds + EXCLUDED.memory_used_mb_seconds,
              updated_at = now()
`

func (q *Queries) AddCpuMemory(ctx context.Context, vpsID pgtype.UUID, cpuDeltaMs, memDeltaMbSeconds int64) error {
	_, err := q.db.Exec(ctx, addCpuMemory, vpsID, cpuDeltaMs, memDeltaMbSeconds)
	return err
}

const getCurrentUsagePeriod = `
SELECT vps_id, period_start, bandwidth_bytes, cpu_used_ms, memory_used_mb_seconds, created_at, updated_at
FROM vps_usage_periods
WHERE vps_id = $1 AND period_start = date_trunc('month', now())::date
`

// GetCurrentUsagePeriod returns the VPS's usage row for the current month,
// or a zeroed row (not persisted) if none exists yet.
func (q *Queries) GetCurrentUsagePeriod(ctx context.Context, vpsID pgtype.UUID) (VpsUsagePeriod, error) {
	row := q.db.QueryRow(ctx, getCurrentUsagePeriod, vpsID)
	var u VpsUsagePeriod
	err := row.Scan(&u.VpsID, &u.PeriodStart, &u.BandwidthBytes, &u.CpuUsedMs, &u.MemoryUsedMbSeconds, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return VpsUsagePeriod{VpsID: vpsID}, err
	}
	return u, nil
}

type AggregateUsage struct {
	BandwidthBytes      int64
	CpuUsedMs           int64
	MemoryUsedMbSeconds int64
}

const getUserAggregateUsage = `
SELECT COALESCE(SUM(u.bandwidth_bytes), 0),
       COALESCE(SUM(u.cpu_used_ms), 0),
       COALESCE(SUM(u.memory_used_mb_seconds), 0)
FROM vps_usage_periods u
JOIN vpses v ON v.id = u.vps_id
WHERE v.user_id = $1
  AND u.period_start = date_trunc('month', now())::date
  AND v.state != 'destroyed'
`

// GetUserAggregateUsage sums usage across all of a user's VPSes for the
// current month; both the forward proxy's per-request check and the
// monitor's enforcement pass call this.
func (q *Queries) GetUserAggregateUsage(ctx context.Context, userID pgtype.UUID) (AggregateUsage, error) {
	var agg AggregateUsage
	err := q.db.QueryRow(ctx, getUserAggregateUsage, userID).Scan(&agg.BandwidthBytes, &agg.CpuUsedMs, &agg.MemoryUsedMbSeconds)
	return agg, err
}
