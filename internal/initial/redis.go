package initial

import (
	"context"
	"fmt"
	"time"

	"NotifyLink/internal/config"
	"NotifyLink/pkg/redis"
	"NotifyLink/pkg/zlog"

	"go.uber.org/zap"
)

// InitRedis 未配置主机或连接失败时跳过，令牌吊销检查随之关闭
func InitRedis(conf *config.Config) {
	rc := conf.RedisConfig
	if rc.Host == "" {
		zlog.Info("redis not configured, token revocation disabled")
		return
	}
	port := rc.Port
	if port == 0 {
		port = 6379
	}
	addr := fmt.Sprintf("%s:%d", rc.Host, port)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := redis.Connect(ctx, redis.Options{
		Addr:         addr,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
	})
	if err != nil {
		zlog.Error("redis connect failed, token revocation disabled", zap.String("addr", addr), zap.Error(err))
		return
	}
	zlog.Info("redis connected", zap.String("addr", addr))
}
