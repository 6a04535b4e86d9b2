package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mcdev12/predictduel/go/internal/dbconfig"
)

// Entry is one leaderboard row
type Entry struct {
	Wallet    string
	Username  string
	DuelScore int
}

func main() {
	limit := flag.Int("limit", 10, "number of wallets to show")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
        SELECT wallet, username, duel_score
        FROM users
        ORDER BY duel_score DESC, wallet
        LIMIT $1
    `, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query leaderboard: %v\n", err)
		os.Exit(1)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Entry])
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan leaderboard: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSERNAME\tWALLET\tSCORE")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i+1, e.Username, e.Wallet, e.DuelScore)
	}
	w.Flush()
}
