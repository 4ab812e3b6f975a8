package sqlc

import (
	"context"
)

// GetValidSessionByToken looks up a browser session by its Auth.js session
// token, returning pgx.ErrNoRows if it is missing or has expired. The
// sessions table is owned and written by an external identity layer; this
// is the control plane's one read path into it.
const getValidSessionByToken = `
SELECT id, session_token, user_id, expires FROM sessions WHERE session_token = $1 AND expires > now()
`

func (q *Queries) GetValidSessionByToken(ctx context.Context, token string) (Session, error) {
	row := q.db.QueryRow(ctx, getValidSessionByToken, token)
	var s Session
	err := row.Scan(&s.ID, &s.SessionToken, &s.UserID, &s.Expires)
	return s, err
}
