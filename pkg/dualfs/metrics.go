package dualfs

import "time"

// Metrics provides observability for dual-store operations.
//
// This is optional. When not provided, metrics collection is skipped.
type Metrics interface {
	// ObserveOperation records one public operation and its outcome.
	ObserveOperation(op string, duration time.Duration, err error)

	// RecordCompensation records a compensating action and whether it
	// succeeded.
	RecordCompensation(op string, ok bool)

	// RecordMirrorFailure records a move or copy whose content change
	// succeeded but whose metadata mirror did not.
	RecordMirrorFailure(op string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, time.Duration, error) {}
func (noopMetrics) RecordCompensation(string, bool)               {}
func (noopMetrics) RecordMirrorFailure(string)                    {}
