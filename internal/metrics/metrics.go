// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// カレンダー取得・検索サービス・HTTPハンドラーから利用する。
type MetricsCollector interface {
	RecordLookup(outcome string)
	RecordUpstreamStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordStatusQuery(isOpen bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	lookups        *prometheus.CounterVec
	upstreamStatus *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	statusQueries  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flavorcast_lookup_total",
			Help: "結果種別ごとのフレーバー検索数",
		}, []string{"outcome"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flavorcast_upstream_status_total",
			Help: "カレンダーページのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flavorcast_fetch_latency_seconds",
			Help:    "カレンダーページ取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		statusQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flavorcast_status_queries_total",
			Help: "営業状態の問い合わせ数",
		}, []string{"state"}),
	}

	reg.MustRegister(
		c.lookups,
		c.upstreamStatus,
		c.fetchLatency,
		c.statusQueries,
	)

	return c
}

// RecordLookup はフレーバー検索の結果種別を記録する。
func (c *Collector) RecordLookup(outcome string) {
	c.lookups.WithLabelValues(outcome).Inc()
}

// RecordUpstreamStatus はカレンダーページのHTTPステータスコードを記録する。
func (c *Collector) RecordUpstreamStatus(statusCode int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はカレンダーページ取得のレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordStatusQuery は営業状態の問い合わせを記録する。
func (c *Collector) RecordStatusQuery(isOpen bool) {
	state := "closed"
	if isOpen {
		state = "open"
	}
	c.statusQueries.WithLabelValues(state).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
