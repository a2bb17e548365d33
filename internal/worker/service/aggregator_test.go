package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onchain-health/internal/worker/model"
)

const testAvaxToken = "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7"

var checksummedAvaxToken = common.HexToAddress(testAvaxToken).Hex()

type fakeSource struct {
	pairs []model.TradingPair
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Pairs(ctx context.Context, _ string) ([]model.TradingPair, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.pairs, nil
}

func scenarioMarket() model.MarketSnapshot {
	return model.MarketSnapshot{
		FullyDilutedValuation: 1_000_000,
		LiquidityUsd:          125_000,
		Volume24hUsd:          450_000,
	}
}

func newTestAggregator(t *testing.T, src MarketDataSource, opts ...Option) *Aggregator {
	t.Helper()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	a, err := NewAggregator(model.TokenConfig{
		Name:            "WAVAX",
		Chain:           "avalanche",
		ContractAddress: testAvaxToken,
	}, src, zap.NewNop(), opts...)
	require.NoError(t, err)
	return a
}

func TestAnalyzeEndToEnd(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{
		{ChainID: "bsc", Market: model.MarketSnapshot{FullyDilutedValuation: 1, Volume24hUsd: 1}},
		{ChainID: "avalanche", PairAddress: "0xpair", Market: scenarioMarket()},
	}}
	a := newTestAggregator(t, src)

	r, err := a.Analyze(context.Background())
	require.NoError(t, err)
	m := r.Metrics

	assert.Equal(t, int64(1000), m.TotalHolders)
	assert.Equal(t, int64(900), m.ActiveHolders24h)
	assert.Equal(t, int64(150), m.Top10Holders)
	assert.Equal(t, int64(45), m.WhaleTransactions24h)
	assert.Equal(t, 180_000.0, m.ExchangeInflows24h)
	assert.Equal(t, 157_500.0, m.ExchangeOutflows24h)
	assert.Equal(t, 22_500.0, m.NetFlow)
	assert.Equal(t, 100.0, m.DecentralizationScore)

	assert.Equal(t, ReferenceGiniCoefficient, m.GiniCoefficient)
	assert.Equal(t, int64(365), m.ContractAge)
	assert.Equal(t, "1000000000", m.TotalSupply)
	assert.Equal(t, "750000000", m.CirculatingSupply)
	assert.Equal(t, "50000000", m.BurnedTokens)
	assert.Equal(t, "200000000", m.LockedTokens)

	assert.Equal(t, model.Provenance{
		Holder:       model.SourceLive,
		ExchangeFlow: model.SourceLive,
		Whale:        model.SourceLive,
		Transaction:  model.SourceLive,
	}, r.Provenance)
	assert.Empty(t, r.Provenance.Degraded())
	assert.Equal(t, FlowModerateInflow, r.FlowSignal)
	assert.Equal(t, int32(1), src.calls.Load(), "market data must be fetched once per aggregation")
}

func TestAnalyzeMatchesNumericChainID(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "43114", Market: scenarioMarket()}}}
	r, err := newTestAggregator(t, src).Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, r.Provenance.Holder)
	assert.Equal(t, int64(1000), r.Metrics.TotalHolders)
}

func TestAnalyzeFallbackWhenNoPairMatches(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"pair on another chain", &fakeSource{pairs: []model.TradingPair{{ChainID: "bsc", Market: scenarioMarket()}}}},
		{"no pairs", &fakeSource{}},
		{"fetch failed", &fakeSource{err: errors.New("connection refused")}},
		{"invalid market data", &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: model.MarketSnapshot{Volume24hUsd: -5}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := newTestAggregator(t, tt.src).Analyze(context.Background())
			require.NoError(t, err)

			assert.Equal(t, DefaultHolderMetrics(), r.Metrics.HolderMetrics)
			assert.Equal(t, int64(1250), r.Metrics.TotalHolders)
			assert.Equal(t, model.ConcentrationMedium, r.Metrics.ConcentrationRisk)
			assert.Equal(t, 75.0, r.Metrics.DecentralizationScore)

			// 成交额类指标使用参考成交额
			assert.Equal(t, ReferenceVolume24hUsd*0.40, r.Metrics.ExchangeInflows24h)
			assert.Equal(t, int64(45), r.Metrics.WhaleTransactions24h)
			assert.Equal(t, int64(4500), r.Metrics.Transactions24h)

			assert.Equal(t, model.Provenance{
				Holder:       model.SourceDefault,
				ExchangeFlow: model.SourceDefault,
				Whale:        model.SourceDefault,
				Transaction:  model.SourceDefault,
			}, r.Provenance)
			assert.Equal(t, int32(1), tt.src.calls.Load())
		})
	}
}

func TestAnalyzeCancelledContextDegrades(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	r, err := newTestAggregator(t, src).Analyze(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultHolderMetrics(), r.Metrics.HolderMetrics)
	assert.Equal(t, model.SourceDefault, r.Provenance.Whale)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	a := newTestAggregator(t, src)

	first, err := a.Analyze(context.Background())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), src.calls.Load(), "no caching across calls")
}

func TestAnalyzeZeroesOnlyTheDegenerateCluster(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	a := newTestAggregator(t, src, WithEstimators(Estimators{
		Whale: func(float64) (model.WhaleMetrics, error) {
			return model.WhaleMetrics{WhaleTransactions24h: 7}, errDegenerate
		},
	}))

	r, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.WhaleMetrics{}, r.Metrics.WhaleMetrics)
	assert.Equal(t, model.SourceZero, r.Provenance.Whale)
	assert.Equal(t, model.SourceLive, r.Provenance.ExchangeFlow)
	assert.Equal(t, model.SourceLive, r.Provenance.Transaction)
	assert.Equal(t, []string{"whale"}, r.Provenance.Degraded())
	assert.Equal(t, int64(4500), r.Metrics.Transactions24h)
}

func TestAnalyzeHolderDegenerateUsesDefaults(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	a := newTestAggregator(t, src, WithEstimators(Estimators{
		Holder: func(model.MarketSnapshot) (model.HolderMetrics, error) {
			return model.HolderMetrics{}, errDegenerate
		},
	}))

	r, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultHolderMetrics(), r.Metrics.HolderMetrics)
	assert.Equal(t, model.SourceDefault, r.Provenance.Holder)
	assert.Equal(t, model.SourceLive, r.Provenance.Whale)
}

func TestAnalyzeEstimatorPanicFailsCall(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	a := newTestAggregator(t, src, WithEstimators(Estimators{
		Transaction: func(float64) (model.TransactionMetrics, error) {
			panic("boom")
		},
	}))

	r, err := a.Analyze(context.Background())
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrEstimatorPanic)

	_, err = a.GetAllMetrics(context.Background())
	assert.ErrorIs(t, err, ErrEstimatorPanic)
}

func TestGetAllMetrics(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	a := newTestAggregator(t, src)

	m, err := a.GetAllMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), m.TotalHolders)
	assert.Equal(t, m.WhaleBuyVolume-m.WhaleSellVolume, m.WhaleNetFlow)
	assert.Equal(t, m.ExchangeInflows24h-m.ExchangeOutflows24h, m.NetFlow)
}

func TestReportSnapshot(t *testing.T) {
	src := &fakeSource{pairs: []model.TradingPair{{ChainID: "avalanche", Market: scenarioMarket()}}}
	r, err := newTestAggregator(t, src).Analyze(context.Background())
	require.NoError(t, err)

	s := r.Snapshot()
	assert.Equal(t, "WAVAX", s.Name)
	assert.Equal(t, "avalanche", s.Chain)
	assert.Equal(t, checksummedAvaxToken, s.ContractAddress)
	assert.Equal(t, r.GeneratedAt.UnixMilli(), s.GeneratedAt)
	assert.Equal(t, r.Metrics, s.Metrics)
}

func TestNewAggregatorValidation(t *testing.T) {
	src := &fakeSource{}
	tests := []struct {
		name  string
		token model.TokenConfig
	}{
		{"unknown chain", model.TokenConfig{Chain: "fantasy", ContractAddress: testAvaxToken}},
		{"empty chain", model.TokenConfig{ContractAddress: testAvaxToken}},
		{"bad evm address", model.TokenConfig{Chain: "avalanche", ContractAddress: "0x1234"}},
		{"empty address", model.TokenConfig{Chain: "43114"}},
		{"bad solana address", model.TokenConfig{Chain: "solana", ContractAddress: "not-base58-0OIl"}},
		{"bad supply", model.TokenConfig{Chain: "avalanche", ContractAddress: testAvaxToken, Supply: model.SupplyConfig{Total: "lots"}}},
		{"negative supply", model.TokenConfig{Chain: "avalanche", ContractAddress: testAvaxToken, Supply: model.SupplyConfig{Burned: "-1"}}},
		{"burned exceeds total", model.TokenConfig{Chain: "avalanche", ContractAddress: testAvaxToken, Supply: model.SupplyConfig{Total: "100"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAggregator(tt.token, src, zap.NewNop())
			assert.Nil(t, a)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := NewAggregator(model.TokenConfig{Chain: "avalanche", ContractAddress: testAvaxToken}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewAggregatorNormalizesToken(t *testing.T) {
	a, err := NewAggregator(model.TokenConfig{
		Chain:           "43114",
		ContractAddress: "0xb31f66aa3c1e785363f0875a1b74e27b85fd66c7",
		Supply:          model.SupplyConfig{Total: "21000000", Burned: "0", Locked: "1000000.5"},
	}, &fakeSource{}, nil)
	require.NoError(t, err)

	tok := a.Token()
	assert.Equal(t, "avalanche", tok.Chain)
	assert.Equal(t, checksummedAvaxToken, tok.ContractAddress)
	assert.Equal(t, checksummedAvaxToken, tok.Name)
	assert.Equal(t, "19999999.5", tok.Supply.Circulating)

	sol, err := NewAggregator(model.TokenConfig{
		Chain:           "solana",
		ContractAddress: "So11111111111111111111111111111111111111112",
		Supply:          model.SupplyConfig{Circulating: "600000000"},
	}, &fakeSource{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "600000000", sol.Token().Supply.Circulating)
}
