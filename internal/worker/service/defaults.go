package service

import (
	"errors"

	"onchain-health/internal/worker/model"
)

var (
	// ErrInvalidConfig 构造时传入了非法的链或合约地址，唯一会向调用方传播的错误类型
	ErrInvalidConfig = errors.New("invalid analysis config")
	// ErrEstimatorPanic 某个估算器没有在内部降级而是直接崩溃
	ErrEstimatorPanic = errors.New("metric estimator panicked")

	errDegenerate = errors.New("degenerate computation")
)

// 估算假设。这些比例不是链上统计结果，而是从行情数据外推的经验值
const (
	minEstimatedHolders    = 100
	minActiveHolders       = 50
	usdPerHolder           = 1000.0 // 每个持有人对应的 FDV
	usdPerActiveHolder     = 500.0  // 每个活跃地址对应的 24h 成交额
	newHolderRatio         = 0.10
	top10HolderRatio       = 0.15
	top50HolderRatio       = 0.25
	whaleHolderRatio       = 0.05
	dolphinHolderRatio     = 0.15
	fishHolderRatio        = 0.80
	exchangeInflowRatio    = 0.40
	exchangeOutflowRatio   = 0.35
	exchangeBalanceFactor  = 1.5
	whaleTxSizeUsd         = 10000.0
	whaleBuyRatio          = 0.30
	whaleSellRatio         = 0.25
	averageTxSizeUsd       = 100.0
	uniqueAddressRatio     = 0.70
	largeTxRatio           = 0.10 // 超过 $10,000 的交易占比
	monthlyProjectionDays  = 30
	holderScoreDenominator = 1000.0
	marketCapBonusFloor    = 1_000_000.0
	marketCapBonus         = 10.0
	highRiskBelowHolders   = 100
	mediumRiskBelowHolders = 500
)

const (
	// ReferenceVolume24hUsd 行情不可用时用于成交额类估算的参考值
	ReferenceVolume24hUsd = 450_000.0
	// ReferenceGiniCoefficient 基尼系数的固定参考估计，不随持仓分布变化
	ReferenceGiniCoefficient = 0.65
	// ContractAgeDays 合约年龄，固定值
	ContractAgeDays = 365

	DefaultTotalSupply  = "1000000000"
	DefaultBurnedTokens = "50000000"
	DefaultLockedTokens = "200000000"
)

// DefaultHolderMetrics 行情不可用时的持有人指标，避免前端展示空状态
func DefaultHolderMetrics() model.HolderMetrics {
	return model.HolderMetrics{
		TotalHolders:     1250,
		ActiveHolders24h: 250,
		NewHolders24h:    25,
		Top10Holders:     15,
		Top50Holders:     25,
		HolderDistribution: model.HolderDistribution{
			Whales:   5,
			Dolphins: 15,
			Fish:     80,
		},
		ConcentrationRisk:     model.ConcentrationMedium,
		DecentralizationScore: 75,
	}
}
