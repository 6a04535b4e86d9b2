package ledger

import (
	"context"
	"errors"
	"fmt"
)

// FieldDuelScore is the per-wallet counter incremented by duels
const FieldDuelScore = "duel_score"

var (
	// ErrUnknownField is returned for counters the ledger does not keep
	ErrUnknownField = errors.New("unknown ledger field")
	// ErrWalletNotFound is returned when no row exists for the wallet
	ErrWalletNotFound = errors.New("wallet not found")
)

// Ledger is the durable per-wallet counter store
type Ledger interface {
	Increment(ctx context.Context, wallet, field string, delta int) error
}

// Nop discards every increment
type Nop struct{}

func (Nop) Increment(context.Context, string, string, int) error { return nil }

// Multi fans an increment out to every ledger and joins their errors
type Multi []Ledger

func (m Multi) Increment(ctx context.Context, wallet, field string, delta int) error {
	var errs []error
	for _, l := range m {
		if err := l.Increment(ctx, wallet, field, delta); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", l, err))
		}
	}
	return errors.Join(errs...)
}
