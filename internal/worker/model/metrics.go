package model

// ConcentrationRisk 持仓集中度风险等级
type ConcentrationRisk string

const (
	ConcentrationLow    ConcentrationRisk = "low"
	ConcentrationMedium ConcentrationRisk = "medium"
	ConcentrationHigh   ConcentrationRisk = "high"
)

// HolderDistribution 按持仓规模划分的地址数，三者各自按总数比例估算，不保证加和等于总数
type HolderDistribution struct {
	Whales   int64 `json:"whales"`
	Dolphins int64 `json:"dolphins"`
	Fish     int64 `json:"fish"`
}

// HolderMetrics 持有人指标
type HolderMetrics struct {
	TotalHolders          int64              `json:"totalHolders"`
	ActiveHolders24h      int64              `json:"activeHolders24h"`
	NewHolders24h         int64              `json:"newHolders24h"`
	Top10Holders          int64              `json:"top10Holders"`
	Top50Holders          int64              `json:"top50Holders"`
	HolderDistribution    HolderDistribution `json:"holderDistribution"`
	ConcentrationRisk     ConcentrationRisk  `json:"concentrationRisk"`
	DecentralizationScore float64            `json:"decentralizationScore"`
}

// TransactionMetrics 交易指标
type TransactionMetrics struct {
	TotalTransactions       int64   `json:"totalTransactions"`
	Transactions24h         int64   `json:"transactions24h"`
	UniqueAddresses24h      int64   `json:"uniqueAddresses24h"`
	AverageTransactionValue float64 `json:"averageTransactionValue"`
	LargeTransactions24h    int64   `json:"largeTransactions24h"`
}

// ExchangeFlowMetrics 交易所资金流
type ExchangeFlowMetrics struct {
	ExchangeInflows24h  float64 `json:"exchangeInflows24h"`
	ExchangeOutflows24h float64 `json:"exchangeOutflows24h"`
	NetFlow             float64 `json:"netFlow"`
	ExchangeBalance     float64 `json:"exchangeBalance"`
}

// WhaleMetrics 巨鲸行为
type WhaleMetrics struct {
	WhaleTransactions24h int64   `json:"whaleTransactions24h"`
	WhaleBuyVolume       float64 `json:"whaleBuyVolume"`
	WhaleSellVolume      float64 `json:"whaleSellVolume"`
	WhaleNetFlow         float64 `json:"whaleNetFlow"`
}

// ContractMetrics 合约层面的静态数据，供应量用字符串避免精度丢失
type ContractMetrics struct {
	GiniCoefficient   float64 `json:"giniCoefficient"`
	ContractAge       int64   `json:"contractAge"`
	TotalSupply       string  `json:"totalSupply"`
	CirculatingSupply string  `json:"circulatingSupply"`
	BurnedTokens      string  `json:"burnedTokens"`
	LockedTokens      string  `json:"lockedTokens"`
}

// OnChainMetrics 一次聚合的完整快照，生成后不再修改。
// 嵌入结构体在 JSON 中会被展开成平铺字段。
type OnChainMetrics struct {
	HolderMetrics
	TransactionMetrics
	ExchangeFlowMetrics
	WhaleMetrics
	ContractMetrics
}

// DataSource 表示某个指标簇的数据来源
type DataSource string

const (
	SourceLive    DataSource = "live"    // 由行情数据推导
	SourceDefault DataSource = "default" // 行情不可用，使用固定默认值
	SourceZero    DataSource = "zero"    // 计算异常，整簇置零
)

// Provenance 每个指标簇的数据来源
type Provenance struct {
	Holder       DataSource `json:"holder"`
	ExchangeFlow DataSource `json:"exchangeFlow"`
	Whale        DataSource `json:"whale"`
	Transaction  DataSource `json:"transaction"`
}

// Degraded 返回所有非 live 的指标簇名称
func (p Provenance) Degraded() []string {
	var out []string
	for _, c := range []struct {
		name string
		src  DataSource
	}{
		{"holder", p.Holder},
		{"exchange_flow", p.ExchangeFlow},
		{"whale", p.Whale},
		{"transaction", p.Transaction},
	} {
		if c.src != SourceLive {
			out = append(out, c.name)
		}
	}
	return out
}
