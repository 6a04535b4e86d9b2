package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// columns maps ledger fields to users table columns. Only these may be incremented.
var columns = map[string]string{
	FieldDuelScore: "duel_score",
}

// Execer is what the Postgres ledger needs from *sql.DB
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Postgres increments counters on the users table shared with the login service
type Postgres struct {
	db Execer
}

func NewPostgres(db Execer) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Increment(ctx context.Context, wallet, field string, delta int) error {
	column, ok := columns[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	query := fmt.Sprintf("UPDATE users SET %s = %s + $1 WHERE wallet = $2", column, column)
	res, err := p.db.ExecContext(ctx, query, delta, wallet)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, wallet)
	}
	return nil
}
