package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

// sessionCookieNames mirrors the cookie names an Auth.js-managed identity
// layer sets, including the Secure-prefixed variant used over HTTPS.
var sessionCookieNames = []string{"__Secure-authjs.session-token", "authjs.session-token"}

// SessionLookup resolves a browser session cookie to a user id. It is the
// gateway proxy's fallback path when no bearer/query JWT is present.
type SessionLookup struct {
	queries *sqlc.Queries
}

func NewSessionLookup(queries *sqlc.Queries) *SessionLookup {
	return &SessionLookup{queries: queries}
}

// UserIDFromCookie reads the first recognized session cookie from r and
// looks it up against the identity layer's sessions table, rejecting
// expired sessions at the query level.
func (s *SessionLookup) UserIDFromCookie(ctx context.Context, r *http.Request) (string, error) {
	for _, name := range sessionCookieNames {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			continue
		}

		session, err := s.queries.GetValidSessionByToken(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", ErrInvalidToken
			}
			return "", err
		}
		return uuidToString(session.UserID.Bytes), nil
	}
	return "", ErrInvalidToken
}
