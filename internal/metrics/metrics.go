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
// Wikipedia取得クライアントやサービス層から利用する。
type MetricsCollector interface {
	RecordFetchSuccess(lang string)
	RecordFetchFailure(lang string, reason string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordArticlesInserted(count int)
	RecordLike()
	RecordUnlike()
	RecordComment()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess     *prometheus.CounterVec
	fetchFail        *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	articlesInserted prometheus.Counter
	likes            prometheus.Counter
	unlikes          prometheus.Counter
	comments         prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikiswipe_fetch_success_total",
			Help: "Wikipedia記事取得成功の合計数（言語別）",
		}, []string{"lang"}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikiswipe_fetch_fail_total",
			Help: "Wikipedia記事取得失敗の合計数（言語別）",
		}, []string{"lang"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikiswipe_upstream_status_total",
			Help: "Wikipedia APIのHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wikiswipe_fetch_latency_seconds",
			Help:    "Wikipedia記事取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		articlesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiswipe_articles_inserted_total",
			Help: "プールに追加された記事の合計数",
		}),
		likes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiswipe_likes_total",
			Help: "いいね登録の合計数",
		}),
		unlikes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiswipe_unlikes_total",
			Help: "いいね解除の合計数",
		}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikiswipe_comments_total",
			Help: "投稿されたコメントの合計数",
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.httpStatus,
		c.fetchLatency,
		c.articlesInserted,
		c.likes,
		c.unlikes,
		c.comments,
	)

	return c
}

// RecordFetchSuccess はWikipedia取得成功を記録する。
func (c *Collector) RecordFetchSuccess(lang string) {
	c.fetchSuccess.WithLabelValues(lang).Inc()
}

// RecordFetchFailure はWikipedia取得失敗を記録する。
func (c *Collector) RecordFetchFailure(lang string, reason string) {
	c.fetchFail.WithLabelValues(lang).Inc()
}

// RecordHTTPStatus は上流APIのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency は取得のレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordArticlesInserted はプールに追加された記事数を記録する。
func (c *Collector) RecordArticlesInserted(count int) {
	c.articlesInserted.Add(float64(count))
}

// RecordLike はいいね登録を記録する。
func (c *Collector) RecordLike() {
	c.likes.Inc()
}

// RecordUnlike はいいね解除を記録する。
func (c *Collector) RecordUnlike() {
	c.unlikes.Inc()
}

// RecordComment はコメント投稿を記録する。
func (c *Collector) RecordComment() {
	c.comments.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターの/metricsルートにマウントして使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
