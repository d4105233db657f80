// Package metrics exposes Prometheus collectors for the HTTP surface, the
// extraction pool, intent routing and generative model calls.
package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ternarybob/kintari/internal/common"
)

const namespace = "kintari"

var (
	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Document extractions by outcome",
		},
		[]string{"outcome"}, // "ok" / "partial" / "unsupported" / "timeout" / "error"
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting a document, including pool wait",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ExtractionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extractions_in_flight",
			Help:      "Extraction workers currently busy",
		},
	)

	DocumentsByType = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_classified_total",
			Help:      "Documents classified by label",
		},
		[]string{"type"},
	)

	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_intents_total",
			Help:      "Chat questions by routed intent",
		},
		[]string{"intent"},
	)

	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Generative model calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Generative model call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)
)

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			ExtractionsTotal,
			ExtractionDuration,
			ExtractionsInFlight,
			DocumentsByType,
			IntentsTotal,
			ModelRequestsTotal,
			ModelRequestDuration,
		)
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ExtractionOutcome maps an extraction error to its metric label
func ExtractionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrExtractionPartialFailure):
		return "partial"
	case errors.Is(err, common.ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, common.ErrExtractionTimeout):
		return "timeout"
	default:
		return "error"
	}
}

// ObserveExtraction records one finished extraction
func ObserveExtraction(err error, d time.Duration) {
	ExtractionsTotal.WithLabelValues(ExtractionOutcome(err)).Inc()
	ExtractionDuration.Observe(d.Seconds())
}

// ModelOutcome maps a generative model error to its metric label
func ModelOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrModelTimeout):
		return "timeout"
	case errors.Is(err, common.ErrModelQuotaExceeded):
		return "quota"
	case errors.Is(err, common.ErrModelMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}

// ObserveModelCall records one generative model call
func ObserveModelCall(provider string, err error, d time.Duration) {
	ModelRequestsTotal.WithLabelValues(provider, ModelOutcome(err)).Inc()
	ModelRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}
