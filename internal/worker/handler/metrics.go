package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"onchain-health/internal/worker/config"
	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/monitor"
	"onchain-health/internal/worker/service"
	"onchain-health/pkg/logger"
)

const MetricsPath = "/api/v1/metrics"

const tracerName = "onchain-health/handler"

// MetricsResponse GET /api/v1/metrics 的返回体
type MetricsResponse struct {
	Token       model.TokenConfig    `json:"token"`
	Metrics     model.OnChainMetrics `json:"metrics"`
	Provenance  model.Provenance     `json:"provenance"`
	FlowSignal  string               `json:"flow_signal"`
	GeneratedAt int64                `json:"generated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// MetricsHandler 每个请求都重新计算一次指标，不做缓存。
// 已配置的代币使用配置里的名称和供应量，其余代币使用默认供应量。
type MetricsHandler struct {
	source service.MarketDataSource
	tl     *zap.Logger

	mu     sync.RWMutex
	tokens map[string]model.TokenConfig
}

func NewMetricsHandler(source service.MarketDataSource, tokens []config.TokenConfig, tl *zap.Logger) *MetricsHandler {
	h := &MetricsHandler{source: source, tl: tl}
	h.UpdateTokens(tokens)
	return h
}

// UpdateTokens 配置热更新时替换已知代币
func (h *MetricsHandler) UpdateTokens(tokens []config.TokenConfig) {
	known := make(map[string]model.TokenConfig, len(tokens))
	for _, t := range tokens {
		known[tokenKey(t.Chain, t.Address)] = t.ToModel()
	}
	h.mu.Lock()
	h.tokens = known
	h.mu.Unlock()
}

func tokenKey(chain, address string) string {
	if c, ok := model.LookupChain(chain); ok {
		chain = c.Slug
	}
	return strings.ToLower(chain) + ":" + strings.ToLower(strings.TrimSpace(address))
}

func (h *MetricsHandler) lookup(chain, address string) model.TokenConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if t, ok := h.tokens[tokenKey(chain, address)]; ok {
		return t
	}
	return model.TokenConfig{Chain: chain, ContractAddress: address}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := logger.StartSpanWithRequest(r, tracerName, "GET "+MetricsPath)
	defer span.End()

	if r.Method != http.MethodGet {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	q := r.URL.Query()
	chain, address := q.Get("chain"), q.Get("address")
	if chain == "" || address == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "chain and address are required"})
		return
	}
	span.SetAttributes(attribute.String("chain", chain), attribute.String("token", address))

	agg, err := service.NewAggregator(h.lookup(chain, address), h.source, h.tl)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	report, err := agg.Analyze(ctx)
	if err != nil {
		span.RecordError(err)
		logger.WithTrace(ctx, h.tl).Error("analyze failed", zap.String("chain", chain), zap.String("token", address), zap.Error(err))
		code := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidConfig) {
			code = http.StatusBadRequest
		}
		h.writeJSON(w, code, errorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, MetricsResponse{
		Token:       report.Token,
		Metrics:     report.Metrics,
		Provenance:  report.Provenance,
		FlowSignal:  report.FlowSignal,
		GeneratedAt: report.GeneratedAt.UnixMilli(),
	})
}

func (h *MetricsHandler) writeJSON(w http.ResponseWriter, code int, v any) {
	monitor.APIRequests.WithLabelValues(MetricsPath, strconv.Itoa(code)).Inc()

	data, err := sonic.Marshal(v)
	if err != nil {
		h.tl.Error("encode response failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
