package systemtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/cludbox/control-plane/internal/billing"
	"github.com/cludbox/control-plane/internal/db"
	"github.com/cludbox/control-plane/internal/db/sqlc"
	"github.com/cludbox/control-plane/systemtest/postgres"
)

// TestControlPlaneLifecycle spins up a real Postgres container, applies the
// schema migrations, and exercises the data access layer end to end: plan
// and VPS config creation, user/agent/VPS provisioning, usage accumulation,
// and the billing overage calculation it feeds.
func TestControlPlaneLifecycle(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.StartPostgres(ctx, "cludbox", "cludbox", "cludbox")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = postgres.TerminatePostgres(ctx, container)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(connStr, ""))

	pool, err := db.InitDB(ctx, connStr, "")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	queries := sqlc.New(pool)

	plan, err := queries.CreatePlan(ctx, sqlc.CreatePlanParams{
		Name:                            "starter",
		MaxAgents:                       5,
		MaxVpses:                        5,
		MaxBandwidthBytes:               1_073_741_824,
		MaxStorageBytes:                 10_737_418_240,
		MaxCpuMs:                        100,
		MaxMemoryMbSeconds:              1024 * 3600,
		OverageBandwidthCostPerGbCents:  100,
		OverageCpuCostPerHourCents:      3600,
		OverageMemoryCostPerGbHourCents: 50,
	})
	require.NoError(t, err)

	vpsConfig, err := queries.CreateVpsConfig(ctx, sqlc.CreateVpsConfigParams{
		Name:          "small",
		Provider:      "classicalvm",
		Image:         "ubuntu-24.04",
		CpuMillicores: 1000,
		MemoryMb:      1024,
		DiskGb:        20,
	})
	require.NoError(t, err)
	require.NoError(t, queries.AddVpsConfigToPlan(ctx, plan.ID, vpsConfig.ID))

	email := fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())
	user, err := queries.CreateUser(ctx, email, pgtype.Text{String: "Ada Lovelace", Valid: true})
	require.NoError(t, err)
	require.NoError(t, queries.SetUserPlan(ctx, user.ID, plan.ID))

	vps, err := queries.CreateVps(ctx, sqlc.CreateVpsParams{
		UserID:      user.ID,
		VpsConfigID: vpsConfig.ID,
		Name:        "agent-vps-1",
		Provider:    "classicalvm",
	})
	require.NoError(t, err)
	require.Equal(t, sqlc.VpsStateProvisioning, vps.State)

	require.NoError(t, queries.SetVpsState(ctx, vps.ID, sqlc.VpsStateRunning))

	token, err := sqlc.GenerateGatewayToken()
	require.NoError(t, err)
	agent, err := queries.CreateAgent(ctx, user.ID, "primary-agent", token)
	require.NoError(t, err)
	require.NoError(t, queries.AssignAgentVps(ctx, agent.ID, vps.ID))

	require.NoError(t, queries.AddBandwidth(ctx, vps.ID, 2_000_000_000))
	require.NoError(t, queries.AddCpuMemory(ctx, vps.ID, 150, 2048*3600))

	agg, err := queries.GetUserAggregateUsage(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2_000_000_000), agg.BandwidthBytes)
	require.Equal(t, int64(150), agg.CpuUsedMs)

	cost := billing.OverageCostCents(plan, billing.FromAggregate(agg))
	require.Positive(t, cost)

	gotAgent, err := queries.GetAgentByIDAndToken(ctx, agent.ID, token)
	require.NoError(t, err)
	require.Equal(t, agent.ID, gotAgent.ID)

	budget, err := queries.SetOverageBudget(ctx, user.ID, cost-1)
	require.NoError(t, err)
	require.False(t, billing.WithinBudget(plan, billing.FromAggregate(agg), budget.BudgetCents))
}
