package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// certificatesIssuedTotal counts issuance attempts by outcome.
	// Labels:
	// - mode:   single | bulk
	// - result: success | invalid_spec | invalid_reference | render_failed | persist_failed | error
	certificatesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honorhub",
			Subsystem: "certificates",
			Name:      "issued_total",
			Help:      "Certificate issuance attempts by mode and result.",
		},
		[]string{"mode", "result"},
	)

	renderDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "honorhub",
		Subsystem: "certificates",
		Name:      "render_duration_seconds",
		Help:      "Time spent rendering one certificate PDF.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	bulkBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "honorhub",
		Subsystem: "certificates",
		Name:      "bulk_batch_size",
		Help:      "Number of specs submitted per bulk issue request.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	// emailSendsTotal counts dispatch attempts.
	// Labels:
	// - provider: smtp | resend | mailgun | unknown
	// - result:   success | failure | rate_limited | not_configured
	emailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honorhub",
			Subsystem: "email",
			Name:      "sends_total",
			Help:      "Email dispatch attempts by provider and result.",
		},
		[]string{"provider", "result"},
	)
)

// IncCertificateIssued increments the issuance counter.
func IncCertificateIssued(mode, result string) {
	if mode == "" {
		mode = "single"
	}
	if result == "" {
		result = "unknown"
	}
	certificatesIssuedTotal.WithLabelValues(mode, result).Inc()
}

// ObserveRender records a render duration in seconds.
func ObserveRender(seconds float64) { renderDurationSeconds.Observe(seconds) }

// ObserveBulkBatch records the size of a bulk batch.
func ObserveBulkBatch(n int) { bulkBatchSize.Observe(float64(n)) }

// IncEmailSend increments the email dispatch counter.
func IncEmailSend(provider, result string) {
	if provider == "" {
		provider = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	emailSendsTotal.WithLabelValues(provider, result).Inc()
}
