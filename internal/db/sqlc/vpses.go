package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const vpsColumns = `id, user_id, vps_config_id, name, provider, provider_vm_id, address, state,
       storage_used_bytes, cpu_used_ms, memory_used_mb_seconds, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVps(row rowScanner) (Vps, error) {
	var v Vps
	err := row.Scan(&v.ID, &v.UserID, &v.VpsConfigID, &v.Name, &v.Provider, &v.ProviderVmID, &v.Address, &v.State,
		&v.StorageUsedBytes, &v.CpuUsedMs, &v.MemoryUsedMbSeconds, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

type CreateVpsParams struct {
	UserID      pgtype.UUID
	VpsConfigID pgtype.UUID
	Name        string
	Provider    string
}

const createVps = `
INSERT INTO vpses (user_id, vps_config_id, name, provider)
VALUES ($1, $2, $3, $4)
RETURNING ` + vpsColumns

func (q *Queries) CreateVps(ctx context.Context, arg CreateVpsParams) (Vps, error) {
	row := q.db.QueryRow(ctx, createVps, arg.UserID, arg.VpsConfigID, arg.Name, arg.Provider)
	return scanVps(row)
}

const getVpsByID = `SELECT ` + vpsColumns + ` FROM vpses WHERE id = $1`

func (q *Queries) GetVpsByID(ctx context.Context, id pgtype.UUID) (Vps, error) {
	row := q.db.QueryRow(ctx, getVpsByID, id)
	return scanVps(row)
}

const listVpsForUser = `SELECT ` + vpsColumns + ` FROM vpses WHERE user_id = $1 ORDER BY created_at`

func (q *Queries) ListVpsForUser(ctx context.Context, userID pgtype.UUID) ([]Vps, error) {
	rows, err := q.db.Query(ctx, listVpsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vps
	for rows.Next() {
		v, err := scanVps(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const countVpsForUser = `SELECT COUNT(*) FROM vpses WHERE user_id = $1 AND state != 'destroyed'`

func (q *Queries) CountVpsForUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countVpsForUser, userID).Scan(&count)
	return count, err
}

const listVpsByState = `SELECT ` + vpsColumns + ` FROM vpses WHERE state = $1 ORDER BY created_at`

func (q *Queries) ListVpsByState(ctx context.Context, state VpsState) ([]Vps, error) {
	rows, err := q.db.Query(ctx, listVpsByState, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vps
	for rows.Next() {
		v, err := scanVps(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const updateVpsProviderRefs = `UPDATE vpses SET provider_vm_id = $1, address = $2, updated_at = now() WHERE id = $3`

func (q *Queries) UpdateVpsProviderRefs(ctx context.Context, id pgtype.UUID, providerVmID, address pgtype.Text) error {
	_, err := q.db.Exec(ctx, updateVpsProviderRefs, providerVmID, address, id)
	return err
}

const setVpsState = `UPDATE vpses SET state = $1, updated_at = now() WHERE id = $2`

func (q *Queries) SetVpsState(ctx context.Context, id pgtype.UUID, state VpsState) error {
	_, err := q.db.Exec(ctx, setVpsState, state, id)
	return err
}

const updateVpsUsage = `
UPDATE vpses
SET storage_used_bytes = $1, cpu_used_ms = $2, memory_used_mb_seconds = $3, updated_at = now()
WHERE id = $4
`

func (q *Queries) UpdateVpsUsage(ctx context.Context, id pgtype.UUID, storageUsedBytes int64, cpuUsedMs, memoryUsedMbSeconds pgtype.Int8) error {
	_, err := q.db.Exec(ctx, updateVpsUsage, storageUsedBytes, cpuUsedMs, memoryUsedMbSeconds, id)
	return err
}
