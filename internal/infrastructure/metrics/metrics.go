package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service. The struct is
// injected into components that record; a nil *Metrics disables recording.
type Metrics struct {
	rpcCallsTotal    *prometheus.CounterVec
	rpcCallDuration  *prometheus.HistogramVec
	rpcRetriesTotal  *prometheus.CounterVec
	rpcRateLimitHits *prometheus.CounterVec

	transfersIngestedTotal *prometheus.CounterVec
	analysesTotal          *prometheus.CounterVec
	analysisDuration       *prometheus.HistogramVec
	anomaliesTotal         *prometheus.CounterVec
	clustersTotal          *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors. A nil registry uses the
// default registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total Solana RPC calls by method and status",
			},
			[]string{"method", "status"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		rpcRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_retries_total",
				Help: "Total Solana RPC retry attempts by reason",
			},
			[]string{"method", "reason"},
		),
		rpcRateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_rate_limit_hits_total",
				Help: "Total 429 responses from the Solana RPC endpoint",
			},
			[]string{"method"},
		),
		transfersIngestedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_ingested_total",
				Help: "Total transfer records ingested by source",
			},
			[]string{"source"},
		),
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_analyses_total",
				Help: "Total wallet analyses by status",
			},
			[]string{"status"},
		),
		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_analysis_duration_seconds",
				Help:    "Duration of full wallet analysis runs",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{},
		),
		anomaliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anomalies_detected_total",
				Help: "Total anomalies flagged by kind",
			},
			[]string{"kind"},
		),
		clustersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clusters_detected_total",
				Help: "Total clusters flagged by kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordRPCCall records one RPC call outcome.
func (m *Metrics) RecordRPCCall(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.rpcCallsTotal.WithLabelValues(method, status).Inc()
	m.rpcCallDuration.WithLabelValues(method).Observe(seconds)
}

// RecordRPCRetry records one retry attempt.
func (m *Metrics) RecordRPCRetry(method, reason string) {
	if m == nil {
		return
	}
	m.rpcRetriesTotal.WithLabelValues(method, reason).Inc()
}

// RecordRateLimitHit records one 429 response.
func (m *Metrics) RecordRateLimitHit(method string) {
	if m == nil {
		return
	}
	m.rpcRateLimitHits.WithLabelValues(method).Inc()
}

// RecordTransfersIngested records ingested transfer records.
func (m *Metrics) RecordTransfersIngested(source string, count int) {
	if m == nil {
		return
	}
	m.transfersIngestedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordAnalysis records one completed or failed analysis run.
func (m *Metrics) RecordAnalysis(status string, seconds float64) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(status).Inc()
	m.analysisDuration.WithLabelValues().Observe(seconds)
}

// RecordAnomaly records one flagged anomaly.
func (m *Metrics) RecordAnomaly(kind string) {
	if m == nil {
		return
	}
	m.anomaliesTotal.WithLabelValues(kind).Inc()
}

// RecordCluster records one flagged cluster.
func (m *Metrics) RecordCluster(kind string) {
	if m == nil {
		return
	}
	m.clustersTotal.WithLabelValues(kind).Inc()
}
