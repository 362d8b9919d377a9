package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dependencies probed by the health check.
const (
	DependencyPostgres = "postgres"
	DependencyRedis    = "redis"
)

var (
	dependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "honorhub",
		Name:      "dependency_up",
		Help:      "1 when the last probe of the dependency succeeded, else 0.",
	}, []string{"dependency"})
	dependencyProbeSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "honorhub",
		Name:      "dependency_probe_seconds",
		Help:      "Latency of dependency health probes.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"dependency"})
)

// ObserveProbe records the outcome and latency of one health probe.
func ObserveProbe(dependency string, took time.Duration, err error) {
	up := 0.0
	if err == nil {
		up = 1
	}
	dependencyUp.WithLabelValues(dependency).Set(up)
	dependencyProbeSeconds.WithLabelValues(dependency).Observe(took.Seconds())
}
