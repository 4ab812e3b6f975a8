package sqlc

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/jackc/pgx/v5/pgtype"
)

const agentColumns = `id, user_id, vps_id, name, gateway_token, created_at, updated_at`

func scanAgent(row rowScanner) (Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.UserID, &a.VpsID, &a.Name, &a.GatewayToken, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GenerateGatewayToken returns a fresh 64-hex-char CSPRNG token. It backs
// both agent creation and token rotation.
func GenerateGatewayToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const createAgent = `
INSERT INTO agents (user_id, name, gateway_token) VALUES ($1, $2, $3)
RETURNING ` + agentColumns

func (q *Queries) CreateAgent(ctx context.Context, userID pgtype.UUID, name, gatewayToken string) (Agent, error) {
	row := q.db.QueryRow(ctx, createAgent, userID, name, gatewayToken)
	return scanAgent(row)
}

const getAgentByID = `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`

func (q *Queries) GetAgentByID(ctx context.Context, id pgtype.UUID) (Agent, error) {
	row := q.db.QueryRow(ctx, getAgentByID, id)
	return scanAgent(row)
}

// GetAgentByIDAndToken constrains the lookup by gateway token at the SQL
// level. Callers on the forward-proxy hot path additionally re-verify the
// token with a constant-time comparison before trusting this row, since a
// row returned here only proves *a* row with that id and token exists, not
// that the comparison that produced it was constant-time.
const getAgentByIDAndToken = `SELECT ` + agentColumns + ` FROM agents WHERE id = $1 AND gateway_token = $2`

func (q *Queries) GetAgentByIDAndToken(ctx context.Context, id pgtype.UUID, token string) (Agent, error) {
	row := q.db.QueryRow(ctx, getAgentByIDAndToken, id, token)
	return scanAgent(row)
}

const listAgentsForUser = `SELECT ` + agentColumns + ` FROM agents WHERE user_id = $1 ORDER BY created_at`

func (q *Queries) ListAgentsForUser(ctx context.Context, userID pgtype.UUID) ([]Agent, error) {
	rows, err := q.db.Query(ctx, listAgentsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const countAgentsForUser = `SELECT COUNT(*) FROM agents WHERE user_id = $1`

func (q *Queries) CountAgentsForUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countAgentsForUser, userID).Scan(&count)
	return count, err
}

const assignAgentVps = `UPDATE agents SET vps_id = $1, updated_at = now() WHERE id = $2`

func (q *Queries) AssignAgentVps(ctx context.Context, agentID pgtype.UUID, vpsID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, assignAgentVps, vpsID, agentID)
	return err
}

const rotateGatewayToken = `UPDATE agents SET gateway_token = $1, updated_at = now() WHERE id = $2`

func (q *Queries) RotateGatewayToken(ctx context.Context, id pgtype.UUID) (string, error) {
	token, err := GenerateGatewayToken()
	if err != nil {
		return "", err
	}
	if _, err := q.db.Exec(ctx, rotateGatewayToken, token, id); err != nil {
		return "", err
	}
	return token, nil
}

const deleteAgent = `DELETE FROM agents WHERE id = $1`

func (q *Queries) DeleteAgent(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteAgent, id)
	return err
}
