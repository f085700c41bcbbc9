package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	jobRuns   *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)
	return &Collector{
		registry: registry,
		requests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epms",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		durations: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "epms",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		jobRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epms",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Total number of background job runs by type and outcome",
		}, []string{"job_type", "status"}),
	}
}

func (c *Collector) Record(route, method string, status int, duration time.Duration) {
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.durations.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (c *Collector) RecordJobRun(jobType, status string) {
	c.jobRuns.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
