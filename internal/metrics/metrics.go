package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schooldash", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "route", "code"})
	HTTPDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schooldash", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schooldash", Name: "handler_errors_total", Help: "Handler errors",
	})
	StoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schooldash", Name: "store_ops_total", Help: "Record store operations",
	}, []string{"backend", "op"})
	StorePing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schooldash", Name: "store_ping_seconds", Help: "Record store ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, HandlerErrors, StoreOps, StorePing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveStorePing(d time.Duration) { StorePing.Observe(d.Seconds()) }
