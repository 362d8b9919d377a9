package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honorhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, matched route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	httpLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "honorhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency. Bulk issuance and PDF downloads dominate the upper buckets.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "honorhub",
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Requests currently being served.",
	})

	// rateLimited counts 429s from the rate limit middleware.
	// policy is the limiter name (e.g. "certificates:bulk"), source is user or ip.
	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honorhub",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limit policy.",
		},
		[]string{"policy", "source"},
	)
)

// unobserved routes are scraped or probed too often to be useful.
var unobserved = map[string]bool{"/metrics": true, "/healthz": true}

// HTTPMiddleware records request counts and latency per matched route. The
// route template (/api/v1/certificates/:id) is used, never the raw path.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if unobserved[c.Path()] {
				return next(c)
			}
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			code := c.Response().Status
			var he *echo.HTTPError
			if err != nil && !c.Response().Committed && errors.As(err, &he) {
				code = he.Code
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
			httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }

// IncRateLimitExceeded counts one rejected request.
func IncRateLimitExceeded(policy, source string) {
	if policy == "" {
		policy = "unknown"
	}
	if source == "" {
		source = "unknown"
	}
	rateLimited.WithLabelValues(policy, source).Inc()
}
