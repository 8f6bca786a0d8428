package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist remembers revoked token ids until the token would expire anyway.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RedisBlacklist struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBlacklist connects and pings Redis.
func NewRedisBlacklist(ctx context.Context, cfg RedisConfig) (*RedisBlacklist, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisBlacklist{rdb: rdb, prefix: "gocast:jti:"}, nil
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return b.rdb.SetNX(ctx, b.prefix+jti, "1", ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, b.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *RedisBlacklist) Close() error {
	return b.rdb.Close()
}
