package service

import (
	"fmt"
	"math"

	"onchain-health/internal/worker/model"
)

// EstimateHolderMetrics 从 FDV 和 24h 成交额外推持有人指标。
// 持有人数按每 $1000 FDV 一个地址估算，最少 100；活跃地址按每 $500 成交额一个估算，最少 50。
func EstimateHolderMetrics(snapshot model.MarketSnapshot) (model.HolderMetrics, error) {
	if !snapshot.Valid() {
		return model.HolderMetrics{}, fmt.Errorf("%w: invalid market snapshot", errDegenerate)
	}

	holders, err := floorCount(snapshot.FullyDilutedValuation / usdPerHolder)
	if err != nil {
		return model.HolderMetrics{}, err
	}
	holders = max(minEstimatedHolders, holders)

	active, err := floorCount(snapshot.Volume24hUsd / usdPerActiveHolder)
	if err != nil {
		return model.HolderMetrics{}, err
	}
	active = max(minActiveHolders, active)

	h := float64(holders)
	return model.HolderMetrics{
		TotalHolders:     holders,
		ActiveHolders24h: active,
		NewHolders24h:    int64(math.Floor(float64(active) * newHolderRatio)),
		Top10Holders:     int64(math.Floor(h * top10HolderRatio)),
		Top50Holders:     int64(math.Floor(h * top50HolderRatio)),
		HolderDistribution: model.HolderDistribution{
			Whales:   int64(math.Floor(h * whaleHolderRatio)),
			Dolphins: int64(math.Floor(h * dolphinHolderRatio)),
			Fish:     int64(math.Floor(h * fishHolderRatio)),
		},
		ConcentrationRisk:     ConcentrationRisk(holders),
		DecentralizationScore: DecentralizationScore(holders, snapshot.FullyDilutedValuation),
	}, nil
}

// floorCount 向下取整为计数，非有限值、负数或超出 int64 范围视为计算退化
func floorCount(x float64) (int64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0, fmt.Errorf("%w: %v", errDegenerate, x)
	}
	f := math.Floor(x)
	if f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v overflows count", errDegenerate, x)
	}
	return int64(f), nil
}
