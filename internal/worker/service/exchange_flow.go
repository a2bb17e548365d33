package service

import (
	"math"

	"onchain-health/internal/worker/model"
)

// EstimateExchangeFlow 假设 40% 的成交额流入交易所、35% 流出，交易所余额约为流入的 1.5 倍
func EstimateExchangeFlow(volume24hUsd float64) (model.ExchangeFlowMetrics, error) {
	if err := checkVolume(volume24hUsd); err != nil {
		return model.ExchangeFlowMetrics{}, err
	}
	inflows := volume24hUsd * exchangeInflowRatio
	outflows := volume24hUsd * exchangeOutflowRatio
	m := model.ExchangeFlowMetrics{
		ExchangeInflows24h:  inflows,
		ExchangeOutflows24h: outflows,
		NetFlow:             inflows - outflows,
		ExchangeBalance:     inflows * exchangeBalanceFactor,
	}
	if err := checkFinite(m.ExchangeInflows24h, m.ExchangeOutflows24h, m.NetFlow, m.ExchangeBalance); err != nil {
		return model.ExchangeFlowMetrics{}, err
	}
	return m, nil
}

const (
	FlowStrongInflow    = "strong_inflow"
	FlowModerateInflow  = "moderate_inflow"
	FlowNeutral         = "neutral"
	FlowModerateOutflow = "moderate_outflow"
	FlowStrongOutflow   = "strong_outflow"
)

// strongFlowShare 净流量超过成交额的 10% 视为强信号
const strongFlowShare = 0.10

// InterpretNetFlow 把交易所净流量翻译成可读标签，阈值相对 24h 成交额
func InterpretNetFlow(netFlow, volume24hUsd float64) string {
	threshold := math.Abs(volume24hUsd) * strongFlowShare
	switch {
	case netFlow > threshold && threshold > 0:
		return FlowStrongInflow
	case netFlow > 0:
		return FlowModerateInflow
	case netFlow < -threshold && threshold > 0:
		return FlowStrongOutflow
	case netFlow < 0:
		return FlowModerateOutflow
	default:
		return FlowNeutral
	}
}

func checkVolume(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errDegenerate
	}
	return nil
}

func checkFinite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errDegenerate
		}
	}
	return nil
}
