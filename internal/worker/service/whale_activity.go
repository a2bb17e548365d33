package service

import "onchain-health/internal/worker/model"

// EstimateWhaleActivity 每 $10,000 成交额记一笔巨鲸交易，买入占 30%、卖出占 25%
func EstimateWhaleActivity(volume24hUsd float64) (model.WhaleMetrics, error) {
	if err := checkVolume(volume24hUsd); err != nil {
		return model.WhaleMetrics{}, err
	}
	txs, err := floorCount(volume24hUsd / whaleTxSizeUsd)
	if err != nil {
		return model.WhaleMetrics{}, err
	}
	buy := volume24hUsd * whaleBuyRatio
	sell := volume24hUsd * whaleSellRatio
	if err := checkFinite(buy, sell, buy-sell); err != nil {
		return model.WhaleMetrics{}, err
	}
	return model.WhaleMetrics{
		WhaleTransactions24h: txs,
		WhaleBuyVolume:       buy,
		WhaleSellVolume:      sell,
		WhaleNetFlow:         buy - sell,
	}, nil
}
