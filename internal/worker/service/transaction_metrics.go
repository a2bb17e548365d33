package service

import (
	"fmt"
	"math"

	"onchain-health/internal/worker/model"
)

// EstimateTransactionMetrics 平均每笔交易按 $100 估算交易数，总交易数按 30 天外推
func EstimateTransactionMetrics(volume24hUsd float64) (model.TransactionMetrics, error) {
	if err := checkVolume(volume24hUsd); err != nil {
		return model.TransactionMetrics{}, err
	}
	txs, err := floorCount(volume24hUsd / averageTxSizeUsd)
	if err != nil {
		return model.TransactionMetrics{}, err
	}
	if txs > math.MaxInt64/monthlyProjectionDays {
		return model.TransactionMetrics{}, fmt.Errorf("%w: monthly projection overflows", errDegenerate)
	}

	// 0 笔交易时平均值记 0，不做除法
	var avg float64
	if txs > 0 {
		avg = volume24hUsd / float64(txs)
	}

	return model.TransactionMetrics{
		TotalTransactions:       txs * monthlyProjectionDays,
		Transactions24h:         txs,
		UniqueAddresses24h:      int64(math.Floor(float64(txs) * uniqueAddressRatio)),
		AverageTransactionValue: avg,
		LargeTransactions24h:    int64(math.Floor(float64(txs) * largeTxRatio)),
	}, nil
}
