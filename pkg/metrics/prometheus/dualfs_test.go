package prometheus

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metrics"
	"github.com/marmos91/tulipfs/pkg/store"
)

func TestDualFSMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newDualFSMetrics(reg)

	m.ObserveOperation("write_file", 5*time.Millisecond, nil)
	m.ObserveOperation("write_file", time.Millisecond, fmt.Errorf("write a: %w", store.ErrReadOnly))
	m.ObserveOperation("make_dir", time.Millisecond, nil)
	m.RecordCompensation("write_file", true)
	m.RecordCompensation("write_file", false)
	m.RecordMirrorFailure("move")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("write_file", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("write_file", "read_only")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensations.WithLabelValues("write_file", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensations.WithLabelValues("write_file", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mirrorFailures.WithLabelValues("move")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.operationDuration))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("stat a: %w", store.ErrNotFound), "not_found"},
		{fmt.Errorf("mkdir a: %w", store.ErrExists), "exists"},
		{fmt.Errorf("remove a: %w", store.ErrNotEmpty), "not_empty"},
		{store.ErrInvalidPath, "invalid_path"},
		{dualfs.ErrReservedName, "invalid_path"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status(tt.err), "%v", tt.err)
	}
}

func TestNewDualFSMetricsDisabled(t *testing.T) {
	assert.Nil(t, NewDualFSMetrics())
}

func TestNewDualFSMetricsIsShared(t *testing.T) {
	metrics.InitRegistry()

	var first, second dualfs.Metrics
	assert.NotPanics(t, func() {
		first = NewDualFSMetrics()
		second = NewDualFSMetrics()
	})
	assert.NotNil(t, first)
	assert.Same(t, first.(*dualfsMetrics), second.(*dualfsMetrics))
}
