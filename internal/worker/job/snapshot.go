package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"onchain-health/internal/worker/config"
	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/monitor"
	"onchain-health/internal/worker/service"
)

// SnapshotSink 接收计算好的快照，通常是 writer.AsyncBatchWriter
type SnapshotSink interface {
	Submit(item model.TokenSnapshot) bool
}

// SnapshotJob 定时为所有配置的代币重新计算指标并写入下游
type SnapshotJob struct {
	source  service.MarketDataSource
	sink    SnapshotSink
	workers int
	timeout time.Duration
	logger  *zap.Logger

	mu          sync.RWMutex
	aggregators []*service.Aggregator
}

func NewSnapshotJob(tokens []config.TokenConfig, source service.MarketDataSource, sink SnapshotSink, cfg config.WorkerConfig, logger *zap.Logger) (*SnapshotJob, error) {
	j := &SnapshotJob{
		source:  source,
		sink:    sink,
		workers: max(1, cfg.WorkerNum),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logger,
	}
	if err := j.UpdateTokens(tokens); err != nil {
		return nil, err
	}
	return j, nil
}

// UpdateTokens 替换代币列表。任一代币配置非法时保留旧列表并返回错误
func (j *SnapshotJob) UpdateTokens(tokens []config.TokenConfig) error {
	aggs := make([]*service.Aggregator, 0, len(tokens))
	var errs []error
	for i, t := range tokens {
		agg, err := service.NewAggregator(t.ToModel(), j.source, j.logger)
		if err != nil {
			errs = append(errs, fmt.Errorf("tokens[%d]: %w", i, err))
			continue
		}
		aggs = append(aggs, agg)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	j.mu.Lock()
	j.aggregators = aggs
	j.mu.Unlock()
	monitor.SnapshotTokens.Set(float64(len(aggs)))
	j.logger.Info("snapshot token list updated", zap.Int("tokens", len(aggs)))
	return nil
}

// Run 并发计算所有代币，单个代币失败不影响其他代币，返回所有失败的汇总
func (j *SnapshotJob) Run(ctx context.Context) error {
	j.mu.RLock()
	aggs := j.aggregators
	j.mu.RUnlock()

	start := time.Now()
	p := pool.New().WithErrors().WithMaxGoroutines(j.workers)
	for _, agg := range aggs {
		p.Go(func() error {
			return j.runOne(ctx, agg)
		})
	}
	err := p.Wait()

	monitor.SnapshotJobDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitor.SnapshotJobRuns.WithLabelValues("error").Inc()
		return err
	}
	monitor.SnapshotJobRuns.WithLabelValues("ok").Inc()
	return nil
}

func (j *SnapshotJob) runOne(ctx context.Context, agg *service.Aggregator) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	token := agg.Token()
	report, err := agg.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("%s %s: %w", token.Chain, token.ContractAddress, err)
	}
	if j.sink != nil && !j.sink.Submit(report.Snapshot()) {
		j.logger.Warn("snapshot dropped", zap.String("chain", token.Chain), zap.String("token", token.ContractAddress))
	}
	return nil
}

// Reports 计算并返回所有代币的报告，供一次性命令使用
func (j *SnapshotJob) Reports(ctx context.Context) ([]*service.Report, error) {
	j.mu.RLock()
	aggs := j.aggregators
	j.mu.RUnlock()

	reports := make([]*service.Report, len(aggs))
	p := pool.New().WithErrors().WithMaxGoroutines(j.workers)
	for i, agg := range aggs {
		p.Go(func() error {
			tctx := ctx
			if j.timeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, j.timeout)
				defer cancel()
			}
			r, err := agg.Analyze(tctx)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	return reports, p.Wait()
}
