package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

func TestOverageCostCentsWithinCaps(t *testing.T) {
	plan := sqlc.Plan{
		MaxBandwidthBytes:               1_000_000_000,
		MaxCpuMs:                        100,
		MaxMemoryMbSeconds:              1_000_000,
		OverageBandwidthCostPerGbCents:  10,
		OverageCpuCostPerHourCents:      3600,
		OverageMemoryCostPerGbHourCents: 5,
	}

	cost := OverageCostCents(plan, Usage{BandwidthBytes: 500_000_000, CpuUsedMs: 50, MemoryUsedMbSeconds: 10})
	assert.Equal(t, int64(0), cost)
}

func TestOverageCostCentsCpuBoundary(t *testing.T) {
	plan := sqlc.Plan{
		MaxCpuMs:                   100,
		OverageCpuCostPerHourCents: 3600,
	}

	cost := OverageCostCents(plan, Usage{CpuUsedMs: 150})
	assert.Equal(t, int64(50), cost)
}

func TestOverageCostCentsRoundsUp(t *testing.T) {
	plan := sqlc.Plan{
		MaxBandwidthBytes:              1_000_000_000,
		OverageBandwidthCostPerGbCents: 10,
	}

	cost := OverageCostCents(plan, Usage{BandwidthBytes: 1_000_000_001})
	assert.Equal(t, int64(1), cost)
}

func TestWithinBudget(t *testing.T) {
	plan := sqlc.Plan{
		MaxCpuMs:                   100,
		OverageCpuCostPerHourCents: 3600,
	}
	usage := Usage{CpuUsedMs: 150}

	assert.True(t, WithinBudget(plan, usage, 50))
	assert.False(t, WithinBudget(plan, usage, 49))
}
