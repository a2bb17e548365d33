package service

import (
	"math"

	"onchain-health/internal/worker/model"
)

// ConcentrationRisk 只由持有人数量决定，区间左闭右开
func ConcentrationRisk(totalHolders int64) model.ConcentrationRisk {
	switch {
	case totalHolders < highRiskBelowHolders:
		return model.ConcentrationHigh
	case totalHolders < mediumRiskBelowHolders:
		return model.ConcentrationMedium
	default:
		return model.ConcentrationLow
	}
}

// DecentralizationScore 持有人数每 1000 记 100 分封顶，市值严格大于 100 万再加 10 分，结果截断到 [0,100]
func DecentralizationScore(totalHolders int64, marketCap float64) float64 {
	base := math.Min(100, float64(totalHolders)/holderScoreDenominator*100)
	if marketCap > marketCapBonusFloor {
		base += marketCapBonus
	}
	if math.IsNaN(base) {
		return 0
	}
	return math.Max(0, math.Min(100, base))
}

// GiniCoefficient 返回固定参考值。没有真实的余额分布可算，调用方不要假设它会随分布变化
func GiniCoefficient(_ model.HolderDistribution) float64 {
	return ReferenceGiniCoefficient
}
