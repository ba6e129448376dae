package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of one process. A nil *Metrics is a
// valid no-op recorder, so components can be built without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	syncRuns     *prometheus.CounterVec
	syncDuration prometheus.Histogram
	syncArticles *prometheus.CounterVec
	modelCalls   *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec
	modelTokens  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	chatMessages prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newshub_sync_runs_total",
			Help: "Sync runs by outcome (ok or the failing stage).",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newshub_sync_duration_seconds",
			Help:    "Wall time of a sync run.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		syncArticles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newshub_sync_articles_total",
			Help: "Articles seen per pipeline stage.",
		}, []string{"stage"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newshub_model_calls_total",
			Help: "Generative model calls by purpose and result.",
		}, []string{"purpose", "result"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newshub_model_call_duration_seconds",
			Help:    "Generative model call latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"purpose"}),
		modelTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newshub_model_tokens_total",
			Help: "Tokens consumed by direction.",
		}, []string{"purpose", "direction"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newshub_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newshub_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newshub_cache_lookups_total",
			Help: "Article cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		chatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newshub_chat_messages_total",
			Help: "Chat messages appended to sessions.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.syncRuns, m.syncDuration, m.syncArticles,
		m.modelCalls, m.modelLatency, m.modelTokens,
		m.httpRequests, m.httpLatency,
		m.cacheLookups, m.chatMessages,
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSync records one finished run. outcome is "ok" or the failed stage.
func (m *Metrics) ObserveSync(outcome string, d time.Duration, fetched, curated, created, updated, failed int) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(d.Seconds())
	m.syncArticles.WithLabelValues("fetched").Add(float64(fetched))
	m.syncArticles.WithLabelValues("curated").Add(float64(curated))
	m.syncArticles.WithLabelValues("created").Add(float64(created))
	m.syncArticles.WithLabelValues("updated").Add(float64(updated))
	m.syncArticles.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) ObserveModelCall(purpose string, err error, d time.Duration, inputTokens, outputTokens int64) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.modelCalls.WithLabelValues(purpose, result).Inc()
	m.modelLatency.WithLabelValues(purpose).Observe(d.Seconds())
	m.modelTokens.WithLabelValues(purpose, "input").Add(float64(inputTokens))
	m.modelTokens.WithLabelValues(purpose, "output").Add(float64(outputTokens))
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ChatMessage() {
	if m == nil {
		return
	}
	m.chatMessages.Inc()
}
