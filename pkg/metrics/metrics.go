package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voice_analytics"

// Collectors groups the service's Prometheus metrics
type Collectors struct {
	registry *prometheus.Registry

	// Lag engine
	LagRuns               *prometheus.CounterVec
	LagCallsAnalyzed      prometheus.Counter
	LagEpisodes           *prometheus.CounterVec
	LagRunDuration        prometheus.Histogram
	UnreadableTranscripts prometheus.Counter
	LagExports            *prometheus.CounterVec

	// HTTP
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry,
// together with the Go runtime and process collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collectors{
		registry: reg,
		LagRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lag_analysis_runs_total",
				Help:      "Lag analysis requests by result source (engine or cache)",
			},
			[]string{"source"},
		),
		LagCallsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lag_calls_analyzed_total",
			Help:      "Calls fed through the lag engine",
		}),
		LagEpisodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lag_episodes_total",
				Help:      "Threshold violations found, by lag type",
			},
			[]string{"lag_type"},
		),
		LagRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lag_analysis_duration_seconds",
			Help:      "Time spent fetching and aggregating calls for one lag report",
			Buckets:   prometheus.DefBuckets,
		}),
		UnreadableTranscripts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unreadable_transcripts_total",
			Help:      "Stored transcripts that could not be decoded",
		}),
		LagExports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lag_exports_total",
				Help:      "Lag report exports by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		c.LagRuns,
		c.LagCallsAnalyzed,
		c.LagEpisodes,
		c.LagRunDuration,
		c.UnreadableTranscripts,
		c.LagExports,
		c.HTTPRequests,
		c.HTTPRequestDuration,
	)
	return c
}

// Registry returns the registry the collectors are registered on
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		Registry:          c.registry,
		EnableOpenMetrics: true,
	})
}

// Middleware records request counts and latency per matched route
func (c *Collectors) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method

			c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
