package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyLoginFail  = "login_fail:"
	keyLoginBlock = "login_block:"
)

// LoginAttemptRepository counts failed authentications per client key in Redis.
type LoginAttemptRepository struct {
	client *redis.Client
	limit  int64
	window time.Duration
	block  time.Duration
}

// NewLoginAttemptRepository constructs the repository. Non-positive settings fall back to 5 failures / 5m window / 15m block.
func NewLoginAttemptRepository(client *redis.Client, limit int, window, block time.Duration) *LoginAttemptRepository {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if block <= 0 {
		block = 15 * time.Minute
	}
	return &LoginAttemptRepository{client: client, limit: int64(limit), window: window, block: block}
}

// BlockDuration exposes the configured block length.
func (r *LoginAttemptRepository) BlockDuration() time.Duration {
	return r.block
}

// IsBlocked reports whether key is currently locked out.
func (r *LoginAttemptRepository) IsBlocked(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, keyLoginBlock+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", keyLoginBlock+key, err)
	}
	return n > 0, nil
}

// RecordFailure increments the failure counter for key and blocks it once the limit is reached.
// It returns true when this failure triggered the block.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	failKey := keyLoginFail + key
	count, err := r.client.Incr(ctx, failKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr %s: %w", failKey, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, failKey, r.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire %s: %w", failKey, err)
		}
	}
	if count < r.limit {
		return false, nil
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyLoginBlock+key, "1", r.block)
	pipe.Del(ctx, failKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis block %s: %w", key, err)
	}
	return true, nil
}

// Reset clears the failure counter for key.
func (r *LoginAttemptRepository) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, keyLoginFail+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", keyLoginFail+key, err)
	}
	return nil
}
