package ledger

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeExecer struct {
	rows  int64
	err   error
	query string
	args  []any
}

func (f *fakeExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.query = query
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return fakeResult{rows: f.rows}, nil
}

func TestPostgresIncrement(t *testing.T) {
	t.Run("updates duel score", func(t *testing.T) {
		db := &fakeExecer{rows: 1}
		if err := NewPostgres(db).Increment(context.Background(), "W1", FieldDuelScore, 10); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		want := "UPDATE users SET duel_score = duel_score + $1 WHERE wallet = $2"
		if db.query != want {
			t.Fatalf("query = %q, want %q", db.query, want)
		}
		if len(db.args) != 2 || db.args[0] != 10 || db.args[1] != "W1" {
			t.Fatalf("args = %v", db.args)
		}
	})

	t.Run("rejects unknown field before touching the db", func(t *testing.T) {
		db := &fakeExecer{rows: 1}
		err := NewPostgres(db).Increment(context.Background(), "W1", "balance; DROP TABLE users", 10)
		if !errors.Is(err, ErrUnknownField) {
			t.Fatalf("Increment() error = %v, want ErrUnknownField", err)
		}
		if db.query != "" {
			t.Fatalf("query executed: %q", db.query)
		}
	})

	t.Run("missing wallet", func(t *testing.T) {
		err := NewPostgres(&fakeExecer{rows: 0}).Increment(context.Background(), "W9", FieldDuelScore, 10)
		if !errors.Is(err, ErrWalletNotFound) {
			t.Fatalf("Increment() error = %v, want ErrWalletNotFound", err)
		}
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		boom := errors.New("connection refused")
		err := NewPostgres(&fakeExecer{err: boom}).Increment(context.Background(), "W1", FieldDuelScore, 10)
		if !errors.Is(err, boom) {
			t.Fatalf("Increment() error = %v, want wrapped driver error", err)
		}
	})
}

type recordingLedger struct {
	calls int
	err   error
}

func (r *recordingLedger) Increment(context.Context, string, string, int) error {
	r.calls++
	return r.err
}

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	boom := errors.New("redis down")
	ok := &recordingLedger{}
	bad := &recordingLedger{err: boom}

	err := Multi{bad, ok}.Increment(context.Background(), "W1", FieldDuelScore, 10)
	if !errors.Is(err, boom) {
		t.Fatalf("Increment() error = %v, want %v", err, boom)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("calls = %d/%d, want every ledger called once", ok.calls, bad.calls)
	}

	if err := (Multi{ok}).Increment(context.Background(), "W1", FieldDuelScore, 10); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if err := (Nop{}).Increment(context.Background(), "W1", FieldDuelScore, 10); err != nil {
		t.Fatalf("Nop.Increment() error = %v", err)
	}
}

func TestRedisKeys(t *testing.T) {
	r := NewRedis(nil, "duel:")
	if got := r.walletKey("W1"); got != "duel:wallet:W1" {
		t.Fatalf("walletKey() = %q", got)
	}
	if got := r.leaderboardKey(FieldDuelScore); got != "duel:leaderboard:duel_score" {
		t.Fatalf("leaderboardKey() = %q", got)
	}
	if err := r.Increment(context.Background(), "W1", "balance", 1); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Increment() error = %v, want ErrUnknownField", err)
	}
}
