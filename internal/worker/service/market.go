package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/monitor"
)

// MarketDataSource 行情源。网络错误或非 2xx 返回 error，没有交易对时返回空列表
type MarketDataSource interface {
	Pairs(ctx context.Context, contractAddress string) ([]model.TradingPair, error)
}

var errNoMatchingPair = errors.New("no trading pair on configured chain")

// marketLoader 单次聚合内共享的行情数据，最多请求一次上游
type marketLoader struct {
	load func() (model.MarketSnapshot, error)
}

func newMarketLoader(ctx context.Context, source MarketDataSource, chain model.Chain, address string, tl *zap.Logger) *marketLoader {
	return &marketLoader{
		load: sync.OnceValues(func() (model.MarketSnapshot, error) {
			pairs, err := source.Pairs(ctx, address)
			if err != nil {
				monitor.MarketFetchTotal.WithLabelValues(chain.Slug, "error").Inc()
				tl.Warn("market data unavailable, falling back to defaults", zap.Error(err))
				return model.MarketSnapshot{}, err
			}
			for _, p := range pairs {
				if !chain.Matches(p.ChainID) {
					continue
				}
				if !p.Market.Valid() {
					monitor.MarketFetchTotal.WithLabelValues(chain.Slug, "invalid").Inc()
					tl.Warn("market data invalid, falling back to defaults",
						zap.String("pair", p.PairAddress),
						zap.Float64("fdv", p.Market.FullyDilutedValuation),
						zap.Float64("volume_24h", p.Market.Volume24hUsd))
					return model.MarketSnapshot{}, errDegenerate
				}
				monitor.MarketFetchTotal.WithLabelValues(chain.Slug, "ok").Inc()
				return p.Market, nil
			}
			monitor.MarketFetchTotal.WithLabelValues(chain.Slug, "no_pair").Inc()
			tl.Warn("no trading pair on configured chain, falling back to defaults", zap.Int("pairs", len(pairs)))
			return model.MarketSnapshot{}, errNoMatchingPair
		}),
	}
}

// snapshot 返回行情快照，ok=false 表示上游不可用
func (l *marketLoader) snapshot() (model.MarketSnapshot, bool) {
	s, err := l.load()
	return s, err == nil
}

// volume 返回 24h 成交额，上游不可用时用参考值代替
func (l *marketLoader) volume() (float64, bool) {
	s, ok := l.snapshot()
	if !ok {
		return ReferenceVolume24hUsd, false
	}
	return s.Volume24hUsd, true
}
