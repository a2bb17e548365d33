package dexscreener

import "github.com/shopspring/decimal"

// TokenPairsResp /latest/dex/tokens/{address} 的响应
type TokenPairsResp struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"` // 没有交易对时为 null
}

// Pair 单个交易对。数值字段上游有时是字符串有时是数字，用 decimal 统一解析
type Pair struct {
	ChainID     string          `json:"chainId"`
	DexID       string          `json:"dexId"`
	URL         string          `json:"url"`
	PairAddress string          `json:"pairAddress"`
	BaseToken   Token           `json:"baseToken"`
	QuoteToken  Token           `json:"quoteToken"`
	PriceUsd    decimal.Decimal `json:"priceUsd"`
	Volume      Volume          `json:"volume"`
	Liquidity   *Liquidity      `json:"liquidity"` // 可能为 null
	Fdv         decimal.Decimal `json:"fdv"`
	MarketCap   decimal.Decimal `json:"marketCap"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Volume struct {
	M5  decimal.Decimal `json:"m5"`
	H1  decimal.Decimal `json:"h1"`
	H6  decimal.Decimal `json:"h6"`
	H24 decimal.Decimal `json:"h24"`
}

type Liquidity struct {
	Usd   decimal.Decimal `json:"usd"`
	Base  decimal.Decimal `json:"base"`
	Quote decimal.Decimal `json:"quote"`
}
