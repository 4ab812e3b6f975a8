package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type CreateVpsConfigParams struct {
	Name          string
	Provider      string
	Image         string
	CpuMillicores int32
	MemoryMb      int32
	DiskGb        int32
}

const createVpsConfig = `
INSERT INTO vps_configs (name, provider, image, cpu_millicores, memory_mb, disk_gb)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, provider, image, cpu_millicores, memory_mb, disk_gb, created_at, updated_at
`

func (q *Queries) CreateVpsConfig(ctx context.Context, arg CreateVpsConfigParams) (VpsConfig, error) {
	row := q.db.QueryRow(ctx, createVpsConfig, arg.Name, arg.Provider, arg.Image, arg.CpuMillicores, arg.MemoryMb, arg.DiskGb)
	var c VpsConfig
	err := row.Scan(&c.ID, &c.Name, &c.Provider, &c.Image, &c.CpuMillicores, &c.MemoryMb, &c.DiskGb, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getVpsConfigByID = `
SELECT id, name, provider, image, cpu_millicores, memory_mb, disk_gb, created_at, updated_at
FROM vps_configs WHERE id = $1
`

func (q *Queries) GetVpsConfigByID(ctx context.Context, id pgtype.UUID) (VpsConfig, error) {
	row := q.db.QueryRow(ctx, getVpsConfigByID, id)
	var c VpsConfig
	err := row.Scan(&c.ID, &c.Name, &c.Provider, &c.Image, &c.CpuMillicores, &c.MemoryMb, &c.DiskGb, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listVpsConfigsForPlan = `
SELECT vc.id, vc.name, vc.provider, vc.image, vc.cpu_millicores, vc.memory_mb, vc.disk_gb, vc.created_at, vc.updated_at
FROM vps_configs vc
JOIN plan_vps_configs pvc ON pvc.vps_config_id = vc.id
WHERE pvc.plan_id = $1
ORDER BY vc.cpu_millicores, vc.memory_mb
`

func (q *Queries) ListVpsConfigsForPlan(ctx context.Context, planID pgtype.UUID) ([]VpsConfig, error) {
	rows, err := q.db.Query(ctx, listVpsConfigsForPlan, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []VpsConfig
	for rows.Next() {
		var c VpsConfig
		if err := rows.Scan(&c.ID, &c.Name, &c.Provider, &c.Image, &c.CpuMillicores, &c.MemoryMb, &c.DiskGb, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}
