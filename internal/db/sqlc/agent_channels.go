package sqlc

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/jackc/pgx/v5/pgtype"
)

const agentChannelColumns = `id, agent_id, channel_kind, credentials, enabled, webhook_secret, created_at, updated_at`

func scanAgentChannel(row rowScanner) (AgentChannel, error) {
	var c AgentChannel
	err := row.Scan(&c.ID, &c.AgentID, &c.ChannelKind, &c.Credentials, &c.Enabled, &c.WebhookSecret, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GenerateWebhookSecret mirrors GenerateGatewayToken's CSPRNG shape; channel
// webhook secrets and gateway tokens are unrelated credentials that happen
// to share a format.
func GenerateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const insertAgentChannel = `
INSERT INTO agent_channels (agent_id, channel_kind, credentials, webhook_secret)
VALUES ($1, $2, $3, $4)
RETURNING ` + agentChannelColumns

func (q *Queries) InsertAgentChannel(ctx context.Context, agentID pgtype.UUID, channelKind string, credentials []byte, webhookSecret string) (AgentChannel, error) {
	row := q.db.QueryRow(ctx, insertAgentChannel, agentID, channelKind, credentials, webhookSecret)
	return scanAgentChannel(row)
}

const getAgentChannelByAgentAndKind = `SELECT ` + agentChannelColumns + ` FROM agent_channels WHERE agent_id = $1 AND channel_kind = $2`

func (q *Queries) GetAgentChannelByAgentAndKind(ctx context.Context, agentID pgtype.UUID, channelKind string) (AgentChannel, error) {
	row := q.db.QueryRow(ctx, getAgentChannelByAgentAndKind, agentID, channelKind)
	return scanAgentChannel(row)
}

const listAgentChannelsForAgent = `SELECT ` + agentChannelColumns + ` FROM agent_channels WHERE agent_id = $1 ORDER BY created_at`

func (q *Queries) ListAgentChannelsForAgent(ctx context.Context, agentID pgtype.UUID) ([]AgentChannel, error) {
	rows, err := q.db.Query(ctx, listAgentChannelsForAgent, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgentChannel
	for rows.Next() {
		c, err := scanAgentChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const updateAgentChannelCredentials = `
UPDATE agent_channels SET credentials = $1, enabled = $2, updated_at = now() WHERE id = $3
`

func (q *Queries) UpdateAgentChannelCredentials(ctx context.Context, id pgtype.UUID, credentials []byte, enabled bool) error {
	_, err := q.db.Exec(ctx, updateAgentChannelCredentials, credentials, enabled, id)
	return err
}

const deleteAgentChannelByAgentAndKind = `DELETE FROM agent_channels WHERE agent_id = $1 AND channel_kind = $2`

func (q *Queries) DeleteAgentChannelByAgentAndKind(ctx context.Context, agentID pgtype.UUID, channelKind string) error {
	_, err := q.db.Exec(ctx, deleteAgentChannelByAgentAndKind, agentID, channelKind)
	return err
}
