package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// TokenDenylist records token ids revoked at logout. Each entry expires
// together with the token it revokes, so the set never outgrows the live
// tokens.
type TokenDenylist struct {
	client *redisv9.Client
	now    func() time.Time
}

func NewTokenDenylist(client *redisv9.Client) *TokenDenylist {
	return &TokenDenylist{
		client: client,
		now:    time.Now,
	}
}

// Revoke is a no-op for tokens that have already expired.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked token failed: %w", err)
	}
	return nil
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revoked token failed: %w", err)
	}
	return exists > 0, nil
}

func (d *TokenDenylist) key(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}
