// Package prometheus implements tulip's metrics interfaces with Prometheus
// collectors registered on the global registry of pkg/metrics.
package prometheus

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metrics"
	"github.com/marmos91/tulipfs/pkg/store"
)

// dualfsMetrics is the Prometheus implementation of dualfs.Metrics.
type dualfsMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	compensations     *prometheus.CounterVec
	mirrorFailures    *prometheus.CounterVec
}

var (
	sharedDualFS     *dualfsMetrics
	sharedDualFSOnce sync.Once
)

// NewDualFSMetrics returns the Prometheus-backed dualfs.Metrics registered
// on the global registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// makes dualfs use its built-in no-op implementation. The collectors are
// registered on the first call; every later call returns the same value, so
// any number of filesystems in one process share the series.
func NewDualFSMetrics() dualfs.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	sharedDualFSOnce.Do(func() {
		sharedDualFS = newDualFSMetrics(metrics.GetRegistry())
	})
	return sharedDualFS
}

func newDualFSMetrics(reg prometheus.Registerer) *dualfsMetrics {
	return &dualfsMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tulip_operations_total",
				Help: "Total number of dual-store operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tulip_operation_duration_seconds",
				Help: "Duration of dual-store operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.01,  // 10ms
					0.1,   // 100ms
					1,     // 1s
					10,    // 10s
				},
			},
			[]string{"operation"},
		),
		compensations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tulip_compensations_total",
				Help: "Compensating actions run after a partial failure, by outcome",
			},
			[]string{"operation", "outcome"},
		),
		mirrorFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tulip_mirror_failures_total",
				Help: "Moves and copies whose metadata mirror failed after the content changed",
			},
			[]string{"operation"},
		),
	}
}

func (m *dualfsMetrics) ObserveOperation(op string, duration time.Duration, err error) {
	m.operationsTotal.WithLabelValues(op, status(err)).Inc()
	m.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *dualfsMetrics) RecordCompensation(op string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.compensations.WithLabelValues(op, outcome).Inc()
}

func (m *dualfsMetrics) RecordMirrorFailure(op string) {
	m.mirrorFailures.WithLabelValues(op).Inc()
}

// status maps an operation error onto a low-cardinality label value.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrExists):
		return "exists"
	case errors.Is(err, store.ErrNotEmpty):
		return "not_empty"
	case errors.Is(err, store.ErrReadOnly):
		return "read_only"
	case errors.Is(err, store.ErrInvalidPath), errors.Is(err, dualfs.ErrReservedName):
		return "invalid_path"
	default:
		return "error"
	}
}
