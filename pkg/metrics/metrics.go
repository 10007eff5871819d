package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
)

// Recorder is what the synchronizer, alert dispatcher and reconcile worker record into.
type Recorder interface {
	RecordFilterSync(trigger, result string)
	RecordAlertPublish(result string)
	RecordReconcile(result string)
}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	filterSync    *prometheus.CounterVec
	alertPublish  *prometheus.CounterVec
	reconcile     *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// NewCollector registers the watchlist metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		filterSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_filter_sync_total",
			Help: "Filter policy pushes by trigger and result.",
		}, []string{"trigger", "result"}),
		alertPublish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_alert_publish_total",
			Help: "Sentiment alert publishes by result.",
		}, []string{"result"}),
		reconcile: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_reconcile_total",
			Help: "Reconcile tasks by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "watchlist_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.filterSync,
		c.alertPublish,
		c.reconcile,
		c.httpRequests,
		c.httpDurations,
	)

	return c
}

func (c *Collector) RecordFilterSync(trigger, result string) {
	c.filterSync.WithLabelValues(trigger, result).Inc()
}

func (c *Collector) RecordAlertPublish(result string) {
	c.alertPublish.WithLabelValues(result).Inc()
}

func (c *Collector) RecordReconcile(result string) {
	c.reconcile.WithLabelValues(result).Inc()
}

// Middleware counts requests per matched route so path parameters do not explode cardinality.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}

			c.httpRequests.WithLabelValues(ctx.Request().Method, route, strconv.Itoa(status)).Inc()
			c.httpDurations.WithLabelValues(ctx.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFilterSync(string, string) {}
func (Nop) RecordAlertPublish(string)       {}
func (Nop) RecordReconcile(string)          {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
