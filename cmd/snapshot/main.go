package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"onchain-health/internal/worker/config"
	"onchain-health/internal/worker/job"
	"onchain-health/pkg/dexscreener"
	"onchain-health/pkg/logger"
)

// 一次性任务：计算所有配置代币的指标并以 JSON 输出到 stdout

func main() {
	startTime := time.Now()
	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	logger.InitTrace("onchain-health", "snapshot")
	// 启动主 span
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger("snapshot", cfg.Log.Dir)
	defer rootLogger.Sync()
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	source := dexscreener.NewClient(cfg.DexScreener, tl)
	defer source.Close()

	snapshots, err := job.NewSnapshotJob(cfg.Tokens, source, nil, cfg.Worker, tl)
	if err != nil {
		tl.Error("Invalid token config", zap.Error(err))
		os.Exit(1)
	}

	reports, err := snapshots.Reports(ctx)
	if err != nil {
		tl.Error("Some reports failed", zap.Error(err))
	}

	out := make([]any, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r.Snapshot())
		}
	}
	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		tl.Error("Failed to encode reports", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(string(data))

	tl.Info("Task completed successfully", zap.Int("reports", len(out)), zap.Duration("taken_time", time.Since(startTime)))
	if len(out) < len(reports) {
		os.Exit(1)
	}
}
