// Package observability provides Prometheus metrics for the swap scanner.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultNamespace = "swapscope"

// Metrics holds the scanner's collectors. A nil *Metrics records nothing.
type Metrics struct {
	BlocksProcessed     prometheus.Counter
	TransactionsMatched prometheus.Counter
	SwapsEmitted        *prometheus.CounterVec
	SwapsSkipped        *prometheus.CounterVec
	TokensUnresolved    prometheus.Counter
	SinkErrors          prometheus.Counter
	RPCRetries          *prometheus.CounterVec
	BlockDuration       prometheus.Histogram
	LastProcessedBlock  prometheus.Gauge
	HeadLag             prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		BlocksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "blocks_processed_total",
			Help:      "Total number of blocks processed",
		}),
		TransactionsMatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "transactions_matched_total",
			Help:      "Total number of router swap transactions matched by the filter",
		}),
		SwapsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "swaps_emitted_total",
			Help:      "Total number of swap lines emitted by method",
		}, []string{"method"}),
		SwapsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "swaps_skipped_total",
			Help:      "Total number of matched transactions skipped by reason",
		}, []string{"reason"}),
		TokensUnresolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "tokens_unresolved_total",
			Help:      "Total number of swap legs formatted without token metadata",
		}),
		SinkErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "sink_errors_total",
			Help:      "Total number of failed sink writes",
		}),
		RPCRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "rpc_retries_total",
			Help:      "Total number of retried RPC calls by operation",
		}, []string{"op"}),
		BlockDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "block_duration_seconds",
			Help:      "Time spent decoding and emitting one block",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		LastProcessedBlock: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "last_processed_block",
			Help:      "Number of the last fully processed block",
		}),
		HeadLag: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "head_lag_blocks",
			Help:      "Blocks between the chain head and the last processed block",
		}),
	}
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *Metrics) RecordBlock(matched int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BlocksProcessed.Inc()
	m.TransactionsMatched.Add(float64(matched))
	m.BlockDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordEmitted(method string) {
	if m == nil {
		return
	}
	m.SwapsEmitted.WithLabelValues(method).Inc()
}

func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.SwapsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordUnresolved(n int) {
	if m == nil || n == 0 {
		return
	}
	m.TokensUnresolved.Add(float64(n))
}

func (m *Metrics) RecordSinkError() {
	if m == nil {
		return
	}
	m.SinkErrors.Inc()
}

func (m *Metrics) RecordRetry(op string) {
	if m == nil {
		return
	}
	m.RPCRetries.WithLabelValues(op).Inc()
}

// RecordProgress updates the last processed block and, when head is known, the lag.
func (m *Metrics) RecordProgress(block, head uint64) {
	if m == nil {
		return
	}
	m.LastProcessedBlock.Set(float64(block))
	if head >= block {
		m.HeadLag.Set(float64(head - block))
	}
}
