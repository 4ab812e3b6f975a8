package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type CreatePlanParams struct {
	Name                            string
	MaxAgents                       int32
	MaxVpses                        int32
	MaxBandwidthBytes               int64
	MaxStorageBytes                 int64
	MaxCpuMs                        int64
	MaxMemoryMbSeconds              int64
	OverageBandwidthCostPerGbCents  int64
	OverageCpuCostPerHourCents      int64
	OverageMemoryCostPerGbHourCents int64
}

const createPlan = `
INSERT INTO plans (name, max_agents, max_vpses, max_bandwidth_bytes, max_storage_bytes, max_cpu_ms, max_memory_mb_seconds,
                    overage_bandwidth_cost_per_gb_cents, overage_cpu_cost_per_hour_cents, overage_memory_cost_per_gb_hour_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, name, max_agents, max_vpses, max_bandwidth_bytes, max_storage_bytes, max_cpu_ms, max_memory_mb_seconds,
          overage_bandwidth_cost_per_gb_cents, overage_cpu_cost_per_hour_cents, overage_memory_cost_per_gb_hour_cents,
          created_at, updated_at
`

func (q *Queries) CreatePlan(ctx context.Context, arg CreatePlanParams) (Plan, error) {
	row := q.db.QueryRow(ctx, createPlan,
		arg.Name, arg.MaxAgents, arg.MaxVpses, arg.MaxBandwidthBytes, arg.MaxStorageBytes,
		arg.MaxCpuMs, arg.MaxMemoryMbSeconds, arg.OverageBandwidthCostPerGbCents,
		arg.OverageCpuCostPerHourCents, arg.OverageMemoryCostPerGbHourCents,
	)
	var p Plan
	err := row.Scan(&p.ID, &p.Name, &p.MaxAgents, &p.MaxVpses, &p.MaxBandwidthBytes, &p.MaxStorageBytes,
		&p.MaxCpuMs, &p.MaxMemoryMbSeconds, &p.OverageBandwidthCostPerGbCents,
		&p.OverageCpuCostPerHourCents, &p.OverageMemoryCostPerGbHourCents, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getPlanByID = `
SELECT id, name, max_agents, max_vpses, max_bandwidth_bytes, max_storage_bytes, max_cpu_ms, max_memory_mb_seconds,
       overage_bandwidth_cost_per_gb_cents, overage_cpu_cost_per_hour_cents, overage_memory_cost_per_gb_hour_cents,
       created_at, updated_at
FROM plans WHERE id = $1
`

func (q *Queries) GetPlanByID(ctx context.Context, id pgtype.UUID) (Plan, error) {
	row := q.db.QueryRow(ctx, getPlanByID, id)
	var p Plan
	err := row.Scan(&p.ID, &p.Name, &p.MaxAgents, &p.MaxVpses, &p.MaxBandwidthBytes, &p.MaxStorageBytes,
		&p.MaxCpuMs, &p.MaxMemoryMbSeconds, &p.OverageBandwidthCostPerGbCents,
		&p.OverageCpuCostPerHourCents, &p.OverageMemoryCostPerGbHourCents, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listPlans = `
SELECT id, name, max_agents, max_vpses, max_bandwidth_bytes, max_storage_bytes, max_cpu_ms, max_memory_mb_seconds,
       overage_bandwidth_cost_per_gb_cents, overage_cpu_cost_per_hour_cents, overage_memory_cost_per_gb_hour_cents,
       created_at, updated_at
FROM plans ORDER BY name
`

func (q *Queries) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := q.db.Query(ctx, listPlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.MaxAgents, &p.MaxVpses, &p.MaxBandwidthBytes, &p.MaxStorageBytes,
			&p.MaxCpuMs, &p.MaxMemoryMbSeconds, &p.OverageBandwidthCostPerGbCents,
			&p.OverageCpuCostPerHourCents, &p.OverageMemoryCostPerGbHourCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

const addVpsConfigToPlan = `
INSERT INTO plan_vps_configs (plan_id, vps_config_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
`

func (q *Queries) AddVpsConfigToPlan(ctx context.Context, planID, vpsConfigID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, addVpsConfigToPlan, planID, vpsConfigID)
	return err
}
