package worker

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"onchain-health/internal/worker/config"
	"onchain-health/internal/worker/handler"
	"onchain-health/internal/worker/job"
	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/monitor"
	"onchain-health/internal/worker/repository"
	"onchain-health/internal/worker/writer"
	"onchain-health/internal/worker/writer/snapshot"
	"onchain-health/pkg/dexscreener"
)

const (
	snapshotBatchSize     = 50
	snapshotFlushInterval = 2 * time.Second
	cleanupInterval       = 24 * time.Hour
)

type Core struct {
	cfg       config.Config
	tl        *zap.Logger
	repo      repository.Repository
	source    *dexscreener.Client
	scheduler *job.Scheduler
	snapshots *job.SnapshotJob
	sink      *writer.AsyncBatchWriter[model.TokenSnapshot]
	api       *handler.MetricsHandler
	metrics   *monitor.MetricsServer
}

func New(cfg config.Config, logger *zap.Logger) (*Core, error) {
	repo, err := repository.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	source := dexscreener.NewClient(cfg.DexScreener, logger)

	// 初始化快照下游，未配置任何下游时只计算不写入
	var sinks []writer.BatchWriter[model.TokenSnapshot]
	if rdb := repo.GetRDB(); rdb != nil {
		sinks = append(sinks, snapshot.NewRedisSnapshotWriter(rdb, logger, time.Duration(cfg.Redis.TTLSeconds)*time.Second))
	}
	if mq := repo.GetMQ(); mq != nil {
		sinks = append(sinks, snapshot.NewKafkaSnapshotWriter(mq, logger, cfg.Kafka.TopicSnapshot))
	}
	if db := repo.GetDB(); db != nil {
		sinks = append(sinks, snapshot.NewDbSnapshotWriter(db, logger))
	}

	var (
		sink    *writer.AsyncBatchWriter[model.TokenSnapshot]
		jobSink job.SnapshotSink
	)
	if len(sinks) > 0 {
		sink = writer.NewAsyncBatchWriter[model.TokenSnapshot](logger, writer.NewMultiWriter(sinks...), snapshotBatchSize, snapshotFlushInterval, "snapshot", 1)
		jobSink = sink
	} else {
		logger.Warn("no snapshot sink configured, reports are computed but not stored")
	}

	snapshots, err := job.NewSnapshotJob(cfg.Tokens, source, jobSink, cfg.Worker, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	// 初始化作业调度器
	scheduler := job.NewScheduler(logger)
	interval := time.Duration(cfg.Worker.IntervalSeconds) * time.Second
	scheduler.RegisterJob("metrics_snapshot", interval, interval/2, snapshots.Run)
	if repo.GetDB() != nil {
		cleanup := job.NewCleanupJob(repo, cfg.Postgres.RetentionDays, logger)
		scheduler.RegisterJob("snapshot_cleanup", cleanupInterval, time.Minute, cleanup.Run)
	}

	api := handler.NewMetricsHandler(source, cfg.Tokens, logger)

	return &Core{
		cfg:       cfg,
		tl:        logger,
		repo:      repo,
		source:    source,
		scheduler: scheduler,
		snapshots: snapshots,
		sink:      sink,
		api:       api,
		metrics:   monitor.NewMetricsServer(cfg.Monitor, logger, map[string]http.Handler{handler.MetricsPath: api}),
	}, nil
}

// OnConfigChange 配置热更新时刷新代币列表
func (c *Core) OnConfigChange(cfg config.Config) {
	if err := c.snapshots.UpdateTokens(cfg.Tokens); err != nil {
		c.tl.Error("reload tokens failed, keeping previous list", zap.Error(err))
		return
	}
	c.api.UpdateTokens(cfg.Tokens)
}

func (c *Core) Start(ctx context.Context) {
	c.tl.Info("Starting worker core...")
	// 启动监控服务
	c.metrics.Run()

	if c.sink != nil {
		c.sink.Start(ctx)
	}

	// 启动调度器
	c.scheduler.Start(ctx)
	c.tl.Info("Worker started successfully", zap.Int("tokens", len(c.cfg.Tokens)))

	// 等待外部关闭信号
	<-ctx.Done()
	c.tl.Info("Shutting down worker due to context cancellation...")
}

// Stop 优雅关闭 Core 的所有资源
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping worker core...")

	// 先停调度器，保证之后没有新的 Submit
	c.scheduler.Stop(ctx)

	if c.sink != nil {
		c.sink.Close()
	}

	if err := c.metrics.Stop(ctx); err != nil {
		c.tl.Warn("stop metrics server failed", zap.Error(err))
	}

	_ = c.source.Close()
	if err := c.repo.Close(); err != nil {
		c.tl.Warn("close repository failed", zap.Error(err))
	}

	c.tl.Info("Worker core stopped.")
}
