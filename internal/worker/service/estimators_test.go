package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onchain-health/internal/worker/model"
)

func TestConcentrationRiskBoundaries(t *testing.T) {
	tests := []struct {
		holders int64
		want    model.ConcentrationRisk
	}{
		{0, model.ConcentrationHigh},
		{99, model.ConcentrationHigh},
		{100, model.ConcentrationMedium},
		{499, model.ConcentrationMedium},
		{500, model.ConcentrationLow},
		{1_000_000, model.ConcentrationLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConcentrationRisk(tt.holders), "holders=%d", tt.holders)
	}
}

func TestDecentralizationScore(t *testing.T) {
	tests := []struct {
		name      string
		holders   int64
		marketCap float64
		want      float64
	}{
		{"bonus needs strictly greater market cap", 1000, 1_000_000, 100},
		{"small holder base", 250, 500_000, 25},
		{"bonus added", 250, 1_000_001, 35},
		{"clamped to 100", 5000, 50_000_000, 100},
		{"zero holders", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DecentralizationScore(tt.holders, tt.marketCap), 1e-9)
		})
	}
}

func TestGiniCoefficientIgnoresDistribution(t *testing.T) {
	a := GiniCoefficient(model.HolderDistribution{Whales: 1, Dolphins: 1, Fish: 1})
	b := GiniCoefficient(model.HolderDistribution{Whales: 900, Dolphins: 50, Fish: 50})
	assert.Equal(t, ReferenceGiniCoefficient, a)
	assert.Equal(t, a, b)
}

func TestEstimateHolderMetrics(t *testing.T) {
	m, err := EstimateHolderMetrics(model.MarketSnapshot{
		FullyDilutedValuation: 1_000_000,
		LiquidityUsd:          125_000,
		Volume24hUsd:          450_000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), m.TotalHolders)
	assert.Equal(t, int64(900), m.ActiveHolders24h)
	assert.Equal(t, int64(90), m.NewHolders24h)
	assert.Equal(t, int64(150), m.Top10Holders)
	assert.Equal(t, int64(250), m.Top50Holders)
	assert.Equal(t, model.HolderDistribution{Whales: 50, Dolphins: 150, Fish: 800}, m.HolderDistribution)
	assert.Equal(t, model.ConcentrationLow, m.ConcentrationRisk)
	assert.Equal(t, 100.0, m.DecentralizationScore)
}

func TestEstimateHolderMetricsFloors(t *testing.T) {
	m, err := EstimateHolderMetrics(model.MarketSnapshot{FullyDilutedValuation: 5_000, Volume24hUsd: 100})
	require.NoError(t, err)

	assert.Equal(t, int64(100), m.TotalHolders)
	assert.Equal(t, int64(50), m.ActiveHolders24h)
	assert.Equal(t, int64(5), m.NewHolders24h)
	assert.Equal(t, model.ConcentrationMedium, m.ConcentrationRisk)
	assert.LessOrEqual(t, m.Top10Holders, m.TotalHolders)
	assert.LessOrEqual(t, m.Top50Holders, m.TotalHolders)
}

func TestEstimateHolderMetricsRejectsInvalidSnapshot(t *testing.T) {
	for _, s := range []model.MarketSnapshot{
		{FullyDilutedValuation: math.NaN()},
		{FullyDilutedValuation: -1},
		{Volume24hUsd: math.Inf(1)},
		{FullyDilutedValuation: 1e300},
	} {
		_, err := EstimateHolderMetrics(s)
		assert.ErrorIs(t, err, errDegenerate)
	}
}

func TestVolumeEstimatorsFormulas(t *testing.T) {
	const v = 450_000.0

	flow, err := EstimateExchangeFlow(v)
	require.NoError(t, err)
	assert.Equal(t, 180_000.0, flow.ExchangeInflows24h)
	assert.Equal(t, 157_500.0, flow.ExchangeOutflows24h)
	assert.Equal(t, flow.ExchangeInflows24h-flow.ExchangeOutflows24h, flow.NetFlow)
	assert.InDelta(t, 22_500.0, flow.NetFlow, 1e-6)
	assert.Equal(t, flow.ExchangeInflows24h*1.5, flow.ExchangeBalance)

	whale, err := EstimateWhaleActivity(v)
	require.NoError(t, err)
	assert.Equal(t, int64(45), whale.WhaleTransactions24h)
	assert.Equal(t, whale.WhaleBuyVolume-whale.WhaleSellVolume, whale.WhaleNetFlow)
	assert.InDelta(t, 135_000.0, whale.WhaleBuyVolume, 1e-6)
	assert.InDelta(t, 112_500.0, whale.WhaleSellVolume, 1e-6)

	tx, err := EstimateTransactionMetrics(v)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), tx.Transactions24h)
	assert.Equal(t, int64(3150), tx.UniqueAddresses24h)
	assert.Equal(t, int64(450), tx.LargeTransactions24h)
	assert.Equal(t, int64(4500*30), tx.TotalTransactions)
	assert.Equal(t, 100.0, tx.AverageTransactionValue)
}

func TestEstimateTransactionMetricsZeroVolume(t *testing.T) {
	tx, err := EstimateTransactionMetrics(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tx.Transactions24h)
	assert.Equal(t, 0.0, tx.AverageTransactionValue)
	assert.False(t, math.IsNaN(tx.AverageTransactionValue))

	// 不足一笔时也不做除法
	tx, err = EstimateTransactionMetrics(99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tx.Transactions24h)
	assert.Equal(t, 0.0, tx.AverageTransactionValue)
}

func TestVolumeEstimatorsRejectDegenerateInput(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), -1} {
		_, err := EstimateExchangeFlow(v)
		assert.ErrorIs(t, err, errDegenerate)
		_, err = EstimateWhaleActivity(v)
		assert.ErrorIs(t, err, errDegenerate)
		_, err = EstimateTransactionMetrics(v)
		assert.ErrorIs(t, err, errDegenerate)
	}

	_, err := EstimateTransactionMetrics(math.MaxFloat64)
	assert.ErrorIs(t, err, errDegenerate)
}

func TestInterpretNetFlow(t *testing.T) {
	tests := []struct {
		net, volume float64
		want        string
	}{
		{22_500, 450_000, FlowModerateInflow},
		{50_000, 450_000, FlowStrongInflow},
		{-45_000, 450_000, FlowModerateOutflow},
		{-45_001, 450_000, FlowStrongOutflow},
		{0, 450_000, FlowNeutral},
		{0, 0, FlowNeutral},
		{10, 0, FlowModerateInflow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretNetFlow(tt.net, tt.volume), "net=%v volume=%v", tt.net, tt.volume)
	}
}
