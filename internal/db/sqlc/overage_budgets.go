package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCurrentOverageBudget = `
SELECT user_id, period_start, budget_cents, created_at, updated_at
FROM overage_budgets
WHERE user_id = $1 AND period_start = date_trunc('month', now())::date
`

// GetCurrentOverageBudget returns the user's overage budget for the current
// month, or a zeroed (not persisted) row if none has been set — a missing
// budget means no overage spend is authorized.
func (q *Queries) GetCurrentOverageBudget(ctx context.Context, userID pgtype.UUID) (OverageBudget, error) {
	row := q.db.QueryRow(ctx, getCurrentOverageBudget, userID)
	var b OverageBudget
	err := row.Scan(&b.UserID, &b.PeriodStart, &b.BudgetCents, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return OverageBudget{UserID: userID}, err
	}
	return b, nil
}

const setOverageBudget = `
INSERT INTO overage_budgets (user_id, period_start, budget_cents)
VALUES ($1, date_trunc('month', now())::date, $2)
ON CONFLICT (user_id, period_start)
DO UPDATE SET budget_cents = EXCLUDED.budget_cents, updated_at = now()
RETURNING user_id, period_start, budget_cents, created_at, updated_at
`

// SetOverageBudget upserts the current month's budget, replacing rather than
// incrementing — unlike the usage tables, a budget is an assignment, not a
// counter.
func (q *Queries) SetOverageBudget(ctx context.Context, userID pgtype.UUID, budgetCents int64) (OverageBudget, error) {
	row := q.db.QueryRow(ctx, setOverageBudget, userID, budgetCents)
	var b OverageBudget
	err := row.Scan(&b.UserID, &b.PeriodStart, &b.BudgetCents, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
