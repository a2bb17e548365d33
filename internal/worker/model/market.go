package model

import "math"

// MarketSnapshot 单次聚合周期内从行情源拿到的三项原始数据，用完即丢
type MarketSnapshot struct {
	FullyDilutedValuation float64 `json:"fully_diluted_valuation"`
	LiquidityUsd          float64 `json:"liquidity_usd"`
	Volume24hUsd          float64 `json:"volume_24h_usd"`
}

// Valid 所有字段必须是有限的非负数
func (m MarketSnapshot) Valid() bool {
	for _, v := range []float64{m.FullyDilutedValuation, m.LiquidityUsd, m.Volume24hUsd} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// TokenConfig 需要分析的代币
type TokenConfig struct {
	Name            string       `json:"name"`
	Chain           string       `json:"chain"`
	ContractAddress string       `json:"contract_address"`
	Supply          SupplyConfig `json:"supply"`
}

// SupplyConfig 供应量配置，均为十进制字符串，空值使用默认值
type SupplyConfig struct {
	Total       string `json:"total"`
	Circulating string `json:"circulating"`
	Burned      string `json:"burned"`
	Locked      string `json:"locked"`
}

// TradingPair 行情源返回的交易对，只保留聚合需要的字段
type TradingPair struct {
	ChainID     string         `json:"chain_id"`
	DexID       string         `json:"dex_id"`
	PairAddress string         `json:"pair_address"`
	Market      MarketSnapshot `json:"market"`
}
