package myjwt

import (
	"context"
	"time"

	"NotifyLink/pkg/redis"
)

const revokedKeyPrefix = "notifylink:jwt:revoked:"

// RedisRevocationStore 基于 Redis 的令牌黑名单
type RedisRevocationStore struct{}

func NewRedisRevocationStore() *RedisRevocationStore {
	return &RedisRevocationStore{}
}

func (RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	// Redis 未配置时不做吊销检查
	if !redis.IsConnected() {
		return false, nil
	}
	n, err := redis.Exists(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !redis.IsConnected() {
		return redis.ErrNotConnected
	}
	return redis.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl)
}
