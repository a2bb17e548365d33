package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// MarketFetchTotal 行情拉取结果：ok / error / no_pair / invalid
	MarketFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_fetch_total",
			Help: "Market data fetches by chain and result.",
		},
		[]string{"chain", "result"},
	)
	ClusterSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrics_cluster_source_total",
			Help: "Aggregated metric clusters by data source (live, default, zero).",
		},
		[]string{"chain", "cluster", "source"},
	)
	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metrics_aggregation_duration_seconds",
			Help:    "Time taken to aggregate on-chain metrics for one token.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"chain"},
	)
	AggregationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrics_aggregation_failures_total",
			Help: "Aggregations that failed because an estimator panicked.",
		},
		[]string{"chain"},
	)

	// SnapshotJobRuns 快照任务
	SnapshotJobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_job_runs_total",
			Help: "Snapshot job rounds by result.",
		},
		[]string{"result"},
	)
	SnapshotJobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_job_duration_seconds",
			Help:    "Time taken by one snapshot round over all configured tokens.",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
	)
	SnapshotTokens = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_tokens",
			Help: "Number of tokens in the current snapshot round.",
		},
	)

	// APIRequests HTTP 接口
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "HTTP API requests by path and status code.",
		},
		[]string{"path", "code"},
	)

	// AsyncWriterMessagesQueued AsyncWriter 指标
	AsyncWriterMessagesQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_queued_total",
			Help: "Total number of messages queued to async writer.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{10, 50, 100, 200, 500, 1000},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_flush_count_total",
			Help: "Total number of batch flushes triggered.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterItemsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_items_written_total",
			Help: "Total number of items successfully written by the async writer.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		// 聚合指标
		MarketFetchTotal,
		ClusterSourceTotal,
		AggregationDuration,
		AggregationFailures,

		// 任务与接口
		SnapshotJobRuns,
		SnapshotJobDuration,
		SnapshotTokens,
		APIRequests,

		// async 写入指标
		AsyncWriterMessagesQueued,
		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushCount,
		AsyncWriterFlushDuration,
		AsyncWriterItemsWritten,
	)
}
