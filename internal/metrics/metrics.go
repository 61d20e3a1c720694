// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はメトリクス収集のインターフェース。
// APIクライアントと予約サービスから利用する。
type Collector interface {
	RecordUpstreamRequest(statusCode int)
	RecordUpstreamFailure(category string)
	RecordUpstreamLatency(duration time.Duration)
	RecordPendingServed(count int)
	RecordCancelledFiltered(count int)
	RecordDebounceDrop()
}

// PrometheusCollector はPrometheusメトリクスを収集する実装。
type PrometheusCollector struct {
	upstreamRequests  *prometheus.CounterVec
	upstreamFailures  *prometheus.CounterVec
	upstreamLatency   prometheus.Histogram
	pendingServed     prometheus.Counter
	cancelledFiltered prometheus.Counter
	debounceDropped   prometheus.Counter
}

// NewPrometheusCollector は新しいPrometheusCollectorを生成し、
// 指定されたレジストリにメトリクスを登録する。
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dogmates_upstream_request_total",
			Help: "バックエンドAPIリクエストのHTTPステータス別合計数",
		}, []string{"status_code"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dogmates_upstream_failure_total",
			Help: "バックエンドAPIのトランスポート障害のカテゴリ別合計数",
		}, []string{"category"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dogmates_upstream_latency_seconds",
			Help:    "バックエンドAPIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		pendingServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dogmates_bookings_local_pending_served_total",
			Help: "予約一覧に合成されたローカル発番予約の合計数",
		}),
		cancelledFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dogmates_bookings_cancelled_filtered_total",
			Help: "予約一覧から除外されたキャンセル済み予約の合計数",
		}),
		debounceDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dogmates_fetch_debounce_dropped_total",
			Help: "デバウンスにより発行されなかった予約取得の合計数",
		}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamFailures,
		c.upstreamLatency,
		c.pendingServed,
		c.cancelledFiltered,
		c.debounceDropped,
	)

	return c
}

// RecordUpstreamRequest はバックエンドレスポンスのステータスコードを記録する。
func (c *PrometheusCollector) RecordUpstreamRequest(statusCode int) {
	c.upstreamRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamFailure はトランスポート障害をカテゴリ別に記録する。
func (c *PrometheusCollector) RecordUpstreamFailure(category string) {
	c.upstreamFailures.WithLabelValues(category).Inc()
}

// RecordUpstreamLatency はバックエンドリクエストのレイテンシを記録する。
func (c *PrometheusCollector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordPendingServed は一覧に合成されたローカル発番予約数を記録する。
func (c *PrometheusCollector) RecordPendingServed(count int) {
	c.pendingServed.Add(float64(count))
}

// RecordCancelledFiltered は一覧から除外されたキャンセル済み予約数を記録する。
func (c *PrometheusCollector) RecordCancelledFiltered(count int) {
	c.cancelledFiltered.Add(float64(count))
}

// RecordDebounceDrop はデバウンスで破棄された取得要求を記録する。
func (c *PrometheusCollector) RecordDebounceDrop() {
	c.debounceDropped.Inc()
}

// NopCollector は何も記録しないCollector実装。テストおよび未設定時用。
type NopCollector struct{}

func (NopCollector) RecordUpstreamRequest(int)           {}
func (NopCollector) RecordUpstreamFailure(string)        {}
func (NopCollector) RecordUpstreamLatency(time.Duration) {}
func (NopCollector) RecordPendingServed(int)             {}
func (NopCollector) RecordCancelledFiltered(int)         {}
func (NopCollector) RecordDebounceDrop()                 {}

var _ Collector = (*PrometheusCollector)(nil)
var _ Collector = NopCollector{}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
