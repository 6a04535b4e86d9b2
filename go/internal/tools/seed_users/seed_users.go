package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mcdev12/predictduel/go/internal/dbconfig"
)

// User mirrors the JSON snapshot
type User struct {
	Wallet   string `json:"wallet"`
	Username string `json:"username"`
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
  wallet     TEXT PRIMARY KEY,
  username   TEXT NOT NULL,
  duel_score INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func main() {
	path := flag.String("file", "go/internal/assets/users.json", "JSON list of {wallet, username}")
	flag.Parse()

	_ = godotenv.Load()

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		fmt.Fprintf(os.Stderr, "create users table: %v\n", err)
		os.Exit(1)
	}

	// 3) Insert and count
	var (
		total    = len(users)
		inserted int
		skipped  int
		errs     int
	)

	for _, u := range users {
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO users (wallet, username)
            VALUES ($1, $2)
            ON CONFLICT (wallet) DO NOTHING
        `, u.Wallet, u.Username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting user %s: %v\n", u.Wallet, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Users seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
