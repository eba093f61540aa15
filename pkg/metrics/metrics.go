// Package metrics provides Prometheus metrics for the bond dApp backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Contract metrics
	ContractCalls     *prometheus.CounterVec
	CandidateFallback *prometheus.CounterVec
	MetadataFallback  prometheus.Counter

	// Mint pipeline metrics
	MintRuns     *prometheus.CounterVec
	MintDuration prometheus.Histogram

	// Wallet metrics
	ProviderRequests *prometheus.CounterVec
	WalletEvents     *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "tbond"
	}
	factory := promauto.With(reg)

	return &Metrics{
		ContractCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "calls_total",
			Help:      "Total number of contract calls by contract, method and outcome",
		}, []string{"contract", "method", "outcome"}),
		CandidateFallback: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "candidate_fallbacks_total",
			Help:      "Total number of times a candidate method failed and the next one was tried",
		}, []string{"operation"}),
		MetadataFallback: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "metadata_fallback_total",
			Help:      "Total number of metadata reads answered with the hardcoded fallback record",
		}),

		MintRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "runs_total",
			Help:      "Total number of mint pipeline runs by stage and outcome",
		}, []string{"stage", "outcome"}),
		MintDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "duration_seconds",
			Help:      "Approve plus mint duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120},
		}),

		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "provider_requests_total",
			Help:      "Total number of wallet provider requests by method and outcome",
		}, []string{"method", "outcome"}),
		WalletEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "events_total",
			Help:      "Total number of wallet events received",
		}, []string{"event"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// RecordContractCall records a contract call outcome.
func RecordContractCall(contract, method string, err error) {
	DefaultMetrics.ContractCalls.WithLabelValues(contract, method, outcome(err)).Inc()
}

// RecordCandidateFallback records a failed candidate method.
func RecordCandidateFallback(operation string) {
	DefaultMetrics.CandidateFallback.WithLabelValues(operation).Inc()
}

// RecordMetadataFallback records use of the hardcoded metadata record.
func RecordMetadataFallback() {
	DefaultMetrics.MetadataFallback.Inc()
}

// RecordMintStage records one mint pipeline stage.
func RecordMintStage(stage string, err error) {
	DefaultMetrics.MintRuns.WithLabelValues(stage, outcome(err)).Inc()
}

// RecordMintDuration records a full approve plus mint run.
func RecordMintDuration(seconds float64) {
	DefaultMetrics.MintDuration.Observe(seconds)
}

// RecordProviderRequest records a wallet provider request outcome.
func RecordProviderRequest(method string, err error) {
	DefaultMetrics.ProviderRequests.WithLabelValues(method, outcome(err)).Inc()
}

// RecordWalletEvent records a wallet notification.
func RecordWalletEvent(event string) {
	DefaultMetrics.WalletEvents.WithLabelValues(event).Inc()
}
