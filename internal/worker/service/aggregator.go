package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/monitor"
	"onchain-health/pkg/logger"
	"onchain-health/pkg/utils"
)

const tracerName = "onchain-health/service"

// Estimators 四个指标簇的估算函数，默认使用本包的启发式实现，替换成真实数据源时保持签名不变
type Estimators struct {
	Holder       func(model.MarketSnapshot) (model.HolderMetrics, error)
	ExchangeFlow func(volume24hUsd float64) (model.ExchangeFlowMetrics, error)
	Whale        func(volume24hUsd float64) (model.WhaleMetrics, error)
	Transaction  func(volume24hUsd float64) (model.TransactionMetrics, error)
}

func DefaultEstimators() Estimators {
	return Estimators{
		Holder:       EstimateHolderMetrics,
		ExchangeFlow: EstimateExchangeFlow,
		Whale:        EstimateWhaleActivity,
		Transaction:  EstimateTransactionMetrics,
	}
}

type Option func(*Aggregator)

// WithEstimators 替换估算函数，nil 字段保留默认实现
func WithEstimators(e Estimators) Option {
	return func(a *Aggregator) {
		if e.Holder != nil {
			a.estimators.Holder = e.Holder
		}
		if e.ExchangeFlow != nil {
			a.estimators.ExchangeFlow = e.ExchangeFlow
		}
		if e.Whale != nil {
			a.estimators.Whale = e.Whale
		}
		if e.Transaction != nil {
			a.estimators.Transaction = e.Transaction
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// Report 一次聚合的结果。Provenance 标明每个指标簇是实时推导、默认值还是置零
type Report struct {
	Token       model.TokenConfig    `json:"token"`
	Metrics     model.OnChainMetrics `json:"metrics"`
	Provenance  model.Provenance     `json:"provenance"`
	FlowSignal  string               `json:"flow_signal"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Snapshot 转成写入下游的快照
func (r *Report) Snapshot() model.TokenSnapshot {
	return model.TokenSnapshot{
		Name:            r.Token.Name,
		Chain:           r.Token.Chain,
		ContractAddress: r.Token.ContractAddress,
		Metrics:         r.Metrics,
		Provenance:      r.Provenance,
		FlowSignal:      r.FlowSignal,
		GeneratedAt:     r.GeneratedAt.UnixMilli(),
	}
}

// Aggregator 单个代币的指标聚合器。构造后只读，可被多个 goroutine 同时调用
type Aggregator struct {
	token      model.TokenConfig
	chain      model.Chain
	source     MarketDataSource
	estimators Estimators
	now        func() time.Time
	tl         *zap.Logger
}

// NewAggregator 校验链、合约地址和供应量配置，任何一项非法都返回 ErrInvalidConfig
func NewAggregator(token model.TokenConfig, source MarketDataSource, tl *zap.Logger, opts ...Option) (*Aggregator, error) {
	chain, ok := model.LookupChain(token.Chain)
	if !ok {
		return nil, fmt.Errorf("%w: unknown chain %q", ErrInvalidConfig, token.Chain)
	}
	addr, err := utils.NormalizeAddress(token.ContractAddress, chain.Family)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	supply, err := resolveSupply(token.Supply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil market data source", ErrInvalidConfig)
	}
	if tl == nil {
		tl = zap.NewNop()
	}

	token.Chain = chain.Slug
	token.ContractAddress = addr
	token.Supply = supply
	if token.Name == "" {
		token.Name = addr
	}

	a := &Aggregator{
		token:      token,
		chain:      chain,
		source:     source,
		estimators: DefaultEstimators(),
		now:        time.Now,
		tl: tl.With(
			zap.String("chain", chain.Slug),
			zap.String("token", addr),
		),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Aggregator) Token() model.TokenConfig {
	return a.token
}

// GetAllMetrics 返回完整指标快照
func (a *Aggregator) GetAllMetrics(ctx context.Context) (model.OnChainMetrics, error) {
	r, err := a.Analyze(ctx)
	if err != nil {
		return model.OnChainMetrics{}, err
	}
	return r.Metrics, nil
}

// Analyze 并发执行四个估算器并合并结果。
// 行情不可用或计算退化都在各自的指标簇内降级，只有估算器 panic 才会返回错误。
func (a *Aggregator) Analyze(ctx context.Context) (*Report, error) {
	ctx, span := logger.StartSpan(ctx, tracerName, "Aggregator.Analyze",
		attribute.String("chain", a.chain.Slug),
		attribute.String("token", a.token.ContractAddress),
	)
	defer span.End()

	tl := logger.WithTrace(ctx, a.tl)
	start := time.Now()
	market := newMarketLoader(ctx, a.source, a.chain, a.token.ContractAddress, tl)

	var (
		holder     model.HolderMetrics
		flow       model.ExchangeFlowMetrics
		whale      model.WhaleMetrics
		tx         model.TransactionMetrics
		provenance model.Provenance
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		holder, provenance.Holder = a.holder(market, tl)
	})
	wg.Go(func() {
		v, live := market.volume()
		flow, provenance.ExchangeFlow = volumeCluster("exchange_flow", a.estimators.ExchangeFlow, v, live, tl)
	})
	wg.Go(func() {
		v, live := market.volume()
		whale, provenance.Whale = volumeCluster("whale", a.estimators.Whale, v, live, tl)
	})
	wg.Go(func() {
		v, live := market.volume()
		tx, provenance.Transaction = volumeCluster("transaction", a.estimators.Transaction, v, live, tl)
	})
	if r := wg.WaitAndRecover(); r != nil {
		monitor.AggregationFailures.WithLabelValues(a.chain.Slug).Inc()
		span.RecordError(r.AsError())
		tl.Error("metric estimator panicked", zap.String("panic", fmt.Sprint(r.Value)))
		return nil, fmt.Errorf("%w: %v", ErrEstimatorPanic, r.Value)
	}

	usedVolume, liveVolume := market.volume()
	metrics := model.OnChainMetrics{
		HolderMetrics:       holder,
		TransactionMetrics:  tx,
		ExchangeFlowMetrics: flow,
		WhaleMetrics:        whale,
		ContractMetrics: model.ContractMetrics{
			GiniCoefficient:   GiniCoefficient(holder.HolderDistribution),
			ContractAge:       ContractAgeDays,
			TotalSupply:       a.token.Supply.Total,
			CirculatingSupply: a.token.Supply.Circulating,
			BurnedTokens:      a.token.Supply.Burned,
			LockedTokens:      a.token.Supply.Locked,
		},
	}

	for cluster, src := range map[string]model.DataSource{
		"holder":        provenance.Holder,
		"exchange_flow": provenance.ExchangeFlow,
		"whale":         provenance.Whale,
		"transaction":   provenance.Transaction,
	} {
		monitor.ClusterSourceTotal.WithLabelValues(a.chain.Slug, cluster, string(src)).Inc()
	}
	monitor.AggregationDuration.WithLabelValues(a.chain.Slug).Observe(time.Since(start).Seconds())

	if degraded := provenance.Degraded(); len(degraded) > 0 {
		span.SetAttributes(attribute.StringSlice("degraded", degraded))
		tl.Info("metrics aggregated with degraded clusters",
			zap.Strings("degraded", degraded),
			zap.Float64("volume_24h", usedVolume),
			zap.Bool("live_volume", liveVolume))
	} else {
		tl.Debug("metrics aggregated", zap.Float64("volume_24h", usedVolume))
	}

	return &Report{
		Token:       a.token,
		Metrics:     metrics,
		Provenance:  provenance,
		FlowSignal:  InterpretNetFlow(flow.NetFlow, usedVolume),
		GeneratedAt: a.now(),
	}, nil
}

func (a *Aggregator) holder(market *marketLoader, tl *zap.Logger) (model.HolderMetrics, model.DataSource) {
	snapshot, ok := market.snapshot()
	if !ok {
		return DefaultHolderMetrics(), model.SourceDefault
	}
	m, err := a.estimators.Holder(snapshot)
	if err != nil {
		tl.Warn("holder estimation degenerate, using defaults", zap.Error(err))
		return DefaultHolderMetrics(), model.SourceDefault
	}
	return m, model.SourceLive
}

// volumeCluster 计算退化时整簇置零；成交额来自参考值时标记为 default
func volumeCluster[T any](name string, estimate func(float64) (T, error), volume float64, live bool, tl *zap.Logger) (T, model.DataSource) {
	m, err := estimate(volume)
	if err != nil {
		if !errors.Is(err, errDegenerate) {
			tl.Warn("estimator returned unexpected error", zap.String("cluster", name), zap.Error(err))
		} else {
			tl.Warn("estimation degenerate, zeroing cluster", zap.String("cluster", name), zap.Error(err))
		}
		var zero T
		return zero, model.SourceZero
	}
	if !live {
		return m, model.SourceDefault
	}
	return m, model.SourceLive
}
