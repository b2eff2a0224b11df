package revokedtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// RedisRepository keeps each revoked jti as a key that expires together with
// the token it describes.
type RedisRepository struct {
	redis *redis.Client
	now   func() time.Time
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{redis: client, now: time.Now}
}

func blacklistKey(jti string) string {
	return blacklistPrefix + jti
}

func (r *RedisRepository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		// already expired, validation rejects it on expiry alone
		return nil
	}
	if err := r.redis.Set(ctx, blacklistKey(token.JTI), token.TokenType, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.redis.Get(ctx, blacklistKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return true, nil
}

// Prune is a no-op: redis drops the keys when their TTL runs out.
func (r *RedisRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
