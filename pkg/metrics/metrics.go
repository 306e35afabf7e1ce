// Package metrics holds the Prometheus registry shared by tulip components
// and writes it out for the node exporter.
//
// Metrics are opt-in. Until InitRegistry runs, the collectors in
// pkg/metrics/prometheus are nil and dualfs records nothing.
//
//	metrics.InitRegistry()
//	fs := dualfs.New(content, meta, dualfs.WithMetrics(prometheus.NewDualFSMetrics()))
//	...
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/tulip.prom")
package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrDisabled is returned when the registry has not been initialized.
var ErrDisabled = errors.New("metrics are disabled")

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry creates the process-wide registry. Later calls are no-ops.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the registry, or nil while metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// WriteTextfile writes the registry in the Prometheus text format to path,
// for the node exporter textfile collector. The file is replaced
// atomically.
func WriteTextfile(path string) error {
	reg := GetRegistry()
	if reg == nil {
		return ErrDisabled
	}
	return writeTextfile(path, reg)
}

func writeTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
