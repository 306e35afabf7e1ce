package config

import (
	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metrics"
	promMetrics "github.com/marmos91/tulipfs/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// DualFS is the collector for dual-store operations (nil if disabled)
	DualFS dualfs.Metrics

	// TextfilePath is where Flush writes the registry ("" if disabled)
	TextfilePath string
}

// InitializeMetrics creates the metrics components described by cfg.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates Prometheus-backed collectors
//
// If metrics are disabled, an empty result is returned and dualfs falls
// back to its no-op collector.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		DualFS:       promMetrics.NewDualFSMetrics(),
		TextfilePath: cfg.Metrics.TextfilePath,
	}
}

// Flush writes the registry to the configured textfile. It is a no-op when
// metrics are disabled.
func (r *MetricsResult) Flush() error {
	if r == nil || r.TextfilePath == "" {
		return nil
	}
	return metrics.WriteTextfile(r.TextfilePath)
}
