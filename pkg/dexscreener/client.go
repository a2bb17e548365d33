package dexscreener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"onchain-health/internal/worker/config"
	"onchain-health/internal/worker/model"
	"onchain-health/pkg/httpclient"
)

const defaultBaseURL = "https://api.dexscreener.com"

type Client struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewClient(cfg config.DexScreenerConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// 单次请求失败直接降级，不做重试
	httpClient := httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 0,
		UserAgent:  cfg.UserAgent,
	}, logger)

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Pairs 查询合约地址下的所有交易对。网络错误或非 2xx 返回 error，没有交易对时返回空列表
func (c *Client) Pairs(ctx context.Context, contractAddress string) ([]model.TradingPair, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, contractAddress)

	var resp TokenPairsResp
	if err := c.httpClient.Get(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch dexscreener pairs failed, address: %s, error: %w", contractAddress, err)
	}

	pairs := make([]model.TradingPair, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		pairs = append(pairs, p.toTradingPair())
	}
	c.logger.Debug("dexscreener pairs fetched", zap.String("address", contractAddress), zap.Int("count", len(pairs)))
	return pairs, nil
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

func (p Pair) toTradingPair() model.TradingPair {
	snapshot := model.MarketSnapshot{
		FullyDilutedValuation: p.Fdv.InexactFloat64(),
		Volume24hUsd:          p.Volume.H24.InexactFloat64(),
	}
	if p.Liquidity != nil {
		snapshot.LiquidityUsd = p.Liquidity.Usd.InexactFloat64()
	}
	return model.TradingPair{
		ChainID:     p.ChainID,
		DexID:       p.DexID,
		PairAddress: p.PairAddress,
		Market:      snapshot,
	}
}
