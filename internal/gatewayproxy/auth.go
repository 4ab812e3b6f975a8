package gatewayproxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cludbox/control-plane/internal/auth"
	"github.com/cludbox/control-plane/internal/db/sqlc"
)

// uuidFromString parses s as a UUID and wraps it as a valid pgtype.UUID.
func uuidFromString(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

var (
	// ErrUnauthorized maps to 401: no valid session JWT or cookie.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound maps to 404: missing or cross-tenant agent/VPS. Deliberately
	// indistinguishable from "doesn't exist" so a caller can't enumerate
	// another tenant's agent ids.
	ErrNotFound = errors.New("not found")
	// ErrVpsUnavailable maps to 503: the VPS exists but isn't reachable.
	ErrVpsUnavailable = errors.New("vps unavailable")
)

// target is a resolved, authorized agent+VPS pair the caller may proxy to.
type target struct {
	agent sqlc.Agent
	vps   sqlc.Vps
}

// authenticateRequest resolves the caller's user id from a session JWT
// (Bearer header or token= query parameter), falling back to a browser
// session cookie when neither is present.
func (s *Server) authenticateRequest(r *http.Request) (string, error) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}

	if tokenString != "" {
		claims, err := auth.ValidateToken(s.tokenConfig, tokenString)
		if err != nil {
			return "", ErrUnauthorized
		}
		return claims.UserID(), nil
	}

	userID, err := s.sessions.UserIDFromCookie(r.Context(), r)
	if err != nil {
		return "", ErrUnauthorized
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix)
	}
	return ""
}

// resolveTarget authenticates the caller and loads + authorizes the agent
// and VPS identified by agentID, enforcing tenant isolation and VPS
// readiness before any bytes reach the on-VPS backend.
func (s *Server) resolveTarget(ctx context.Context, r *http.Request, agentID pgtype.UUID) (target, error) {
	userID, err := s.authenticateRequest(r)
	if err != nil {
		return target{}, err
	}

	agent, err := s.queries.GetAgentByID(ctx, agentID)
	if err != nil {
		return target{}, ErrNotFound
	}

	if uuidString(agent.UserID) != userID {
		return target{}, ErrNotFound
	}

	if !agent.VpsID.Valid {
		return target{}, ErrNotFound
	}

	vps, err := s.queries.GetVpsByID(ctx, agent.VpsID)
	if err != nil {
		return target{}, ErrNotFound
	}

	if vps.State != sqlc.VpsStateRunning {
		return target{}, ErrVpsUnavailable
	}
	if !vps.Address.Valid || vps.Address.String == "" {
		return target{}, ErrVpsUnavailable
	}

	return target{agent: agent, vps: vps}, nil
}

// uuidString formats a pgtype.UUID's raw bytes as a canonical UUID string,
// the same layout session JWT subjects use.
func uuidString(id pgtype.UUID) string {
	b := id.Bytes
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrVpsUnavailable):
		http.Error(w, "vps unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
