package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	https_server "NotifyLink/api/http"
	"NotifyLink/internal/config"
	"NotifyLink/internal/initial"
	"NotifyLink/pkg/redis"
	"NotifyLink/pkg/zlog"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	if err := zlog.Init(zlog.Options{LogPath: conf.LogConfig.LogPath, Level: conf.LogConfig.Level}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	// 2. 基础设施
	db, err := initial.InitGorm(conf)
	if err != nil {
		zlog.Fatal("mysql init failed", zap.Error(err))
	}
	initial.InitRedis(conf)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := https_server.NewServer(conf, db)

	intake, err := initial.StartNotificationIntake(ctx, conf, srv.NotificationSvc)
	if err != nil {
		zlog.Error("kafka intake init failed", zap.Error(err))
	}

	// 3. 启动 HTTP 服务
	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("server starting", zap.String("addr", addr), zap.Bool("tls", conf.MainConfig.EnableTLS))
		var err error
		if conf.MainConfig.EnableTLS {
			err = httpSrv.ListenAndServeTLS(conf.MainConfig.CertFile, conf.MainConfig.KeyFile)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server start failed", zap.Error(err))
		}
	}()

	// 4. 优雅关闭
	<-ctx.Done()
	zlog.Info("server shutting down")

	// 被劫持的 WebSocket 连接不受 Shutdown 管理，需要主动关闭
	srv.Hub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown failed", zap.Error(err))
	}
	if err := intake.Close(); err != nil {
		zlog.Error("kafka intake close failed", zap.Error(err))
	}
	if err := redis.Close(); err != nil {
		zlog.Error("redis close failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("server stopped")
}
