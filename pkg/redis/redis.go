package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConnected Redis 未初始化
var ErrNotConnected = errors.New("redis is not connected")

var current atomic.Pointer[redis.Client]

type Options struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

// Connect 建立连接并 PING 确认，成功后替换进程级客户端
func Connect(ctx context.Context, opts Options) error {
	c := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		DialTimeout:  opts.DialTimeout,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return err
	}
	if old := current.Swap(c); old != nil {
		_ = old.Close()
	}
	return nil
}

func Close() error {
	if c := current.Swap(nil); c != nil {
		return c.Close()
	}
	return nil
}

func IsConnected() bool {
	return current.Load() != nil
}

// Client 未连接时返回 nil
func Client() *redis.Client {
	return current.Load()
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c := current.Load()
	if c == nil {
		return ErrNotConnected
	}
	return c.Set(ctx, key, value, expiration).Err()
}

func Exists(ctx context.Context, keys ...string) (int64, error) {
	c := current.Load()
	if c == nil {
		return 0, ErrNotConnected
	}
	return c.Exists(ctx, keys...).Result()
}

// TTL key 不存在时返回 -2，未设置过期时间时返回 -1
func TTL(ctx context.Context, key string) (time.Duration, error) {
	c := current.Load()
	if c == nil {
		return 0, ErrNotConnected
	}
	return c.TTL(ctx, key).Result()
}
