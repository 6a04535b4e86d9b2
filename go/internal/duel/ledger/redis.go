package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps a per-wallet hash of counters plus a sorted set per field for leaderboards
type Redis struct {
	client redis.Cmdable
	prefix string
}

func NewRedis(client redis.Cmdable, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) walletKey(wallet string) string {
	return fmt.Sprintf("%swallet:%s", r.prefix, wallet)
}

func (r *Redis) leaderboardKey(field string) string {
	return fmt.Sprintf("%sleaderboard:%s", r.prefix, field)
}

func (r *Redis) Increment(ctx context.Context, wallet, field string, delta int) error {
	if _, ok := columns[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, r.walletKey(wallet), field, int64(delta))
	pipe.ZIncrBy(ctx, r.leaderboardKey(field), float64(delta), wallet)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment %s in redis: %w", field, err)
	}
	return nil
}
