package model

import (
	"github.com/bytedance/sonic"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// TokenSnapshot 一次计算结果，写入 redis/kafka/postgres
type TokenSnapshot struct {
	Name            string         `json:"name"`
	Chain           string         `json:"chain"`
	ContractAddress string         `json:"contract_address"`
	Metrics         OnChainMetrics `json:"metrics"`
	Provenance      Provenance     `json:"provenance"`
	FlowSignal      string         `json:"flow_signal"`
	GeneratedAt     int64          `json:"generated_at"` // 毫秒
}

// MetricsSnapshot mapped from table <onchain_metrics_snapshots>
type MetricsSnapshot struct {
	ID                      int64          `gorm:"column:id;primaryKey;autoIncrement:true"`
	Chain                   string         `gorm:"column:chain;not null;index:idx_snapshot_token"`
	ContractAddress         string         `gorm:"column:contract_address;not null;index:idx_snapshot_token"`
	TotalHolders            int64          `gorm:"column:total_holders"`
	ActiveHolders24h        int64          `gorm:"column:active_holders_24h"`
	HolderDistribution      datatypes.JSON `gorm:"column:holder_distribution"`
	ConcentrationRisk       string         `gorm:"column:concentration_risk"`
	DecentralizationScore   float64        `gorm:"column:decentralization_score"`
	Transactions24h         int64          `gorm:"column:transactions_24h"`
	AverageTransactionValue float64        `gorm:"column:average_transaction_value"`
	NetFlow                 float64        `gorm:"column:net_flow"`
	WhaleNetFlow            float64        `gorm:"column:whale_net_flow"`
	GiniCoefficient         float64        `gorm:"column:gini_coefficient"`
	DegradedClusters        pq.StringArray `gorm:"column:degraded_clusters;type:text[]"`
	FlowSignal              string         `gorm:"column:flow_signal"`
	GeneratedAt             int64          `gorm:"column:generated_at;not null"`
}

// TableName MetricsSnapshot's table name
func (*MetricsSnapshot) TableName() string {
	return "onchain_metrics_snapshots"
}

// NewMetricsSnapshot 从 TokenSnapshot 构造数据库行
func NewMetricsSnapshot(s TokenSnapshot) (*MetricsSnapshot, error) {
	dist, err := sonic.Marshal(s.Metrics.HolderDistribution)
	if err != nil {
		return nil, err
	}
	degraded := s.Provenance.Degraded()
	if degraded == nil {
		degraded = []string{}
	}
	return &MetricsSnapshot{
		Chain:                   s.Chain,
		ContractAddress:         s.ContractAddress,
		TotalHolders:            s.Metrics.TotalHolders,
		ActiveHolders24h:        s.Metrics.ActiveHolders24h,
		HolderDistribution:      datatypes.JSON(dist),
		ConcentrationRisk:       string(s.Metrics.ConcentrationRisk),
		DecentralizationScore:   s.Metrics.DecentralizationScore,
		Transactions24h:         s.Metrics.Transactions24h,
		AverageTransactionValue: s.Metrics.AverageTransactionValue,
		NetFlow:                 s.Metrics.NetFlow,
		WhaleNetFlow:            s.Metrics.WhaleNetFlow,
		GiniCoefficient:         s.Metrics.GiniCoefficient,
		DegradedClusters:        pq.StringArray(degraded),
		FlowSignal:              s.FlowSignal,
		GeneratedAt:             s.GeneratedAt,
	}, nil
}
