package forwardproxy

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

var errAuthRequired = errors.New("proxy authentication required")

// authenticate decodes Proxy-Authorization: Basic base64(agent_id:token),
// looks the agent up by id and token at the database (an equality
// predicate, not a timing channel an agent can observe), and then
// re-verifies the token in constant time before trusting the row.
func (s *Server) authenticate(r *http.Request) (sqlc.Agent, error) {
	agentID, token, err := parseProxyAuth(r.Header.Get("Proxy-Authorization"))
	if err != nil {
		return sqlc.Agent{}, err
	}

	pgID := pgtype.UUID{Bytes: agentID, Valid: true}
	agent, err := s.queries.GetAgentByIDAndToken(r.Context(), pgID, token)
	if err != nil {
		return sqlc.Agent{}, errAuthRequired
	}

	if subtle.ConstantTimeCompare([]byte(agent.GatewayToken), []byte(token)) != 1 {
		return sqlc.Agent{}, errAuthRequired
	}

	return agent, nil
}

// parseProxyAuth decodes a Proxy-Authorization: Basic base64(agent_id:token)
// header into its agent id and token.
func parseProxyAuth(header string) (uuid.UUID, string, error) {
	encoded, ok := strings.CutPrefix(header, "Basic ")
	if !ok {
		return uuid.UUID{}, "", errAuthRequired
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return uuid.UUID{}, "", errAuthRequired
	}

	agentIDStr, token, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return uuid.UUID{}, "", errAuthRequired
	}

	agentID, err := uuid.Parse(agentIDStr)
	if err != nil {
		return uuid.UUID{}, "", errAuthRequired
	}

	return agentID, token, nil
}
