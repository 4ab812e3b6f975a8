package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createUser = `
INSERT INTO users (email, name) VALUES ($1, $2)
RETURNING id, email, name, plan_id, email_verified, image, created_at, updated_at
`

func (q *Queries) CreateUser(ctx context.Context, email string, name pgtype.Text) (User, error) {
	row := q.db.QueryRow(ctx, createUser, email, name)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PlanID, &u.EmailVerified, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, name, plan_id, email_verified, image, created_at, updated_at FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PlanID, &u.EmailVerified, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, name, plan_id, email_verified, image, created_at, updated_at FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PlanID, &u.EmailVerified, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const setUserPlan = `UPDATE users SET plan_id = $1, updated_at = now() WHERE id = $2`

func (q *Queries) SetUserPlan(ctx context.Context, userID pgtype.UUID, planID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, setUserPlan, planID, userID)
	return err
}
