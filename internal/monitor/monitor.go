package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cludbox/control-plane/internal/billing"
	"github.com/cludbox/control-plane/internal/db/sqlc"
	"github.com/cludbox/control-plane/internal/provider"
)

// Monitor runs the fixed-interval poll + enforce loop against running
// VPSes.
type Monitor struct {
	queries   *sqlc.Queries
	collector Collector
	providers *provider.Registry
	interval  time.Duration
}

func New(queries *sqlc.Queries, collector Collector, providers *provider.Registry, interval time.Duration) *Monitor {
	return &Monitor{queries: queries, collector: collector, providers: providers, interval: interval}
}

// Run blocks ticking the poll+enforce cycle until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.pollMetrics(ctx); err != nil {
				slog.Error("metrics poll failed", "error", err)
			}
			if err := m.enforceLimits(ctx); err != nil {
				slog.Error("enforcement check failed", "error", err)
			}
		}
	}
}

// pollMetrics collects fresh metrics for every running VPS whose provider
// meters CPU or memory, accumulates positive deltas into the current
// billing period, and writes the absolute values back onto the VPS row.
func (m *Monitor) pollMetrics(ctx context.Context) error {
	running, err := m.queries.ListVpsByState(ctx, sqlc.VpsStateRunning)
	if err != nil {
		return err
	}

	for _, vps := range running {
		metered := provider.MeteredResourcesFor(vps.Provider)
		if !metered.CPU && !metered.Memory {
			continue
		}

		metrics, err := m.collector.Collect(ctx, vps)
		if err != nil {
			slog.Error("failed to collect metrics", "vps_id", vps.ID, "error", err)
			continue
		}

		var cpuDelta, memDelta int64
		if metered.CPU {
			cpuDelta = positiveDelta(metrics.CpuUsedMs, vps.CpuUsedMs)
		}
		if metered.Memory {
			memDelta = positiveDelta(metrics.MemoryUsedMbSeconds, vps.MemoryUsedMbSeconds)
		}

		if cpuDelta > 0 || memDelta > 0 {
			if err := m.queries.AddCpuMemory(ctx, vps.ID, cpuDelta, memDelta); err != nil {
				slog.Error("failed to write period metrics", "vps_id", vps.ID, "error", err)
			}
		}

		if err := m.queries.UpdateVpsUsage(ctx, vps.ID, metrics.StorageUsedBytes, int64PtrToPgInt8(metrics.CpuUsedMs), int64PtrToPgInt8(metrics.MemoryUsedMbSeconds)); err != nil {
			slog.Error("failed to write metrics", "vps_id", vps.ID, "error", err)
		}
	}
	return nil
}

// positiveDelta returns new-old when both are present and new exceeds old,
// and zero otherwise — handling VPS restarts where a provider's counter
// resets below its last-seen value.
func positiveDelta(newVal *int64, old pgtype.Int8) int64 {
	if newVal == nil || !old.Valid {
		return 0
	}
	if *newVal > old.Int64 {
		return *newVal - old.Int64
	}
	return 0
}

func int64PtrToPgInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

// enforceLimits stops running VPSes belonging to users whose usage exceeds
// both their plan's included allowance and their overage budget. Only
// VPSes on providers that meter CPU or memory are considered and stopped
// here; VPSes on bandwidth-only providers are never stopped by this pass,
// and the forward proxy does not refuse their traffic either.
func (m *Monitor) enforceLimits(ctx context.Context) error {
	running, err := m.queries.ListVpsByState(ctx, sqlc.VpsStateRunning)
	if err != nil {
		return err
	}

	elasticUsers := map[pgtype.UUID]bool{}
	for _, vps := range running {
		metered := provider.MeteredResourcesFor(vps.Provider)
		if metered.CPU || metered.Memory {
			elasticUsers[vps.UserID] = true
		}
	}

	for userID := range elasticUsers {
		user, err := m.queries.GetUserByID(ctx, userID)
		if err != nil {
			slog.Error("enforcement: failed to load user", "user_id", userID, "error", err)
			continue
		}
		if !user.PlanID.Valid {
			continue
		}

		plan, err := m.queries.GetPlanByID(ctx, user.PlanID)
		if err != nil {
			slog.Error("enforcement: failed to load plan", "user_id", userID, "error", err)
			continue
		}

		agg, err := m.queries.GetUserAggregateUsage(ctx, userID)
		if err != nil {
			slog.Error("enforcement: failed to load aggregate usage", "user_id", userID, "error", err)
			continue
		}
		usage := billing.FromAggregate(agg)

		withinPlan := agg.BandwidthBytes <= plan.MaxBandwidthBytes &&
			agg.CpuUsedMs <= plan.MaxCpuMs &&
			agg.MemoryUsedMbSeconds <= plan.MaxMemoryMbSeconds
		if withinPlan {
			continue
		}

		overageCost := billing.OverageCostCents(plan, usage)
		budget, err := m.queries.GetCurrentOverageBudget(ctx, userID)
		if err != nil {
			slog.Error("enforcement: failed to load overage budget", "user_id", userID, "error", err)
			continue
		}

		if overageCost <= budget.BudgetCents {
			continue
		}

		m.stopUserElasticVpses(ctx, userID, running, overageCost, budget.BudgetCents)
	}
	return nil
}

func (m *Monitor) stopUserElasticVpses(ctx context.Context, userID pgtype.UUID, running []sqlc.Vps, overageCost, budgetCents int64) {
	for _, vps := range running {
		if vps.UserID != userID {
			continue
		}
		metered := provider.MeteredResourcesFor(vps.Provider)
		if !metered.CPU && !metered.Memory {
			continue
		}

		p, ok := m.providers.Get(vps.Provider)
		if !ok {
			slog.Warn("enforcement: provider not available, skipping stop", "provider", vps.Provider)
			continue
		}
		if !vps.ProviderVmID.Valid {
			continue
		}

		slog.Warn("enforcement: stopping VPS (overage budget exhausted)",
			"user_id", userID, "vps_id", vps.ID, "overage_cost_cents", overageCost, "budget_cents", budgetCents)

		if err := p.StopVps(ctx, vps.ProviderVmID.String); err != nil {
			slog.Error("enforcement: failed to stop VPS", "vps_id", vps.ID, "error", err)
			continue
		}
		if err := m.queries.SetVpsState(ctx, vps.ID, sqlc.VpsStateStopped); err != nil {
			slog.Error("enforcement: failed to update VPS state", "vps_id", vps.ID, "error", err)
		}
	}
}
