package main

import (
	"context"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"onchain-health/internal/worker"
	"onchain-health/internal/worker/config"
	"onchain-health/pkg/logger"
)

func main() {
	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	shutdownTrace := logger.InitTrace("onchain-health", "worker")
	// 启动主 span
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger("worker", cfg.Log.Dir)
	defer rootLogger.Sync()
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	// 初始化worker
	core, err := worker.New(cfg, tl)
	if err != nil {
		tl.Error("Failed to init worker", zap.Error(err))
		os.Exit(1)
	}

	// 启动配置热加载监听
	config.WatchConfig(&cfg, core.OnConfigChange)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 启动 worker
	go func() {
		tl.Info("Starting onchain-health worker...")
		core.Start(ctx)
	}()

	// 监听操作系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tl.Info("Received shutdown signal, starting graceful shutdown...")

	// 关闭资源
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	core.Stop(stopCtx)
	cancel()

	if err := shutdownTrace(stopCtx); err != nil {
		tl.Warn("Failed to flush traces", zap.Error(err))
	}
	tl.Info("Shutting down all cores...")
}
