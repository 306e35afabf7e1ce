// Package dualfs implements the dual-store filesystem.
//
// An FS pairs a content store, holding the entries users create, with a
// metadata store holding one sidecar descriptor per content entry. The
// sidecar for the entry at path p lives at p/<sidecar filename> in the
// metadata store, so the metadata store mirrors the tree shape of the
// content store with a descriptor file inside every node.
//
// Every content-mutating operation updates the metadata store to match.
// The two stores share no transaction, so consistency is kept by
// compensating actions:
//
//   - creation writes content first and undoes it if the descriptor cannot
//     be written
//   - deletion removes the descriptor first and leaves content untouched if
//     that fails
//   - move and copy mirror into the metadata store after the content store
//     and surface, without undoing, a failed mirror
//
// FS adds no locking. Concurrent mutations of the same path are not
// coordinated.
package dualfs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
)

// ErrReservedName is returned when an entry would be named like the sidecar
// file and so collide with descriptors in the metadata store.
var ErrReservedName = errors.New("reserved entry name")

// FS is the dual-store filesystem.
type FS struct {
	content store.Store
	meta    store.Store

	gen     *metadata.Generator
	codec   metadata.Codec
	metrics Metrics
}

// Option configures an FS.
type Option func(*FS)

// WithGenerator sets the descriptor generator.
func WithGenerator(g *metadata.Generator) Option {
	return func(f *FS) { f.gen = g }
}

// WithCodec sets the sidecar codec, which also fixes the sidecar filename.
func WithCodec(c metadata.Codec) Option {
	return func(f *FS) { f.codec = c }
}

// WithMetrics sets the metrics sink. A nil Metrics disables collection.
func WithMetrics(m Metrics) Option {
	return func(f *FS) { f.metrics = m }
}

// New creates an FS over the given content and metadata stores.
//
// Defaults: a sha256-only generator on the system clock, JSONCodec, and
// no metrics.
func New(content, meta store.Store, opts ...Option) *FS {
	f := &FS{
		content: content,
		meta:    meta,
		codec:   metadata.JSONCodec{},
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.gen == nil {
		// Only fails for unknown digest names; none are requested here.
		f.gen, _ = metadata.NewGenerator()
	}
	if f.metrics == nil {
		f.metrics = noopMetrics{}
	}
	return f
}

// Content returns the content store.
func (f *FS) Content() store.Store { return f.content }

// Meta returns the metadata store.
func (f *FS) Meta() store.Store { return f.meta }

// Generator returns the descriptor generator.
func (f *FS) Generator() *metadata.Generator { return f.gen }

// Codec returns the sidecar codec.
func (f *FS) Codec() metadata.Codec { return f.codec }

// SidecarPath returns where the descriptor of the entry at p is stored in
// the metadata store.
func (f *FS) SidecarPath(p string) string {
	return metadata.SidecarPath(p, f.codec.Filename())
}

// ============================================================================
// Operation plumbing
// ============================================================================

// startOp tags ctx with an operation id (unless the caller already did) and
// returns a function that records the outcome.
func (f *FS) startOp(ctx context.Context, op string, args ...any) (context.Context, func(error)) {
	if logger.FromContext(ctx) == nil {
		ctx = logger.WithContext(ctx, &logger.LogContext{
			OpID:      uuid.NewString(),
			Operation: op,
		})
	}

	start := time.Now()
	logger.DebugCtx(ctx, "dualfs operation started", args...)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		f.metrics.ObserveOperation(op, elapsed, err)

		if err != nil {
			logger.DebugCtx(ctx, "dualfs operation failed",
				append(args, logger.KeyError, err, logger.KeyDuration, elapsed.Milliseconds())...)
			return
		}
		logger.DebugCtx(ctx, "dualfs operation completed",
			append(args, logger.KeyDuration, elapsed.Milliseconds())...)
	}
}

// compensate runs undo after a failed primary step. A failing undo is logged
// and counted; the caller always returns the primary error.
func (f *FS) compensate(ctx context.Context, op, path string, cause error, undo func() error) {
	logger.WarnCtx(ctx, "compensating failed operation",
		logger.KeyPath, path, logger.KeyError, cause)

	if err := undo(); err != nil {
		f.metrics.RecordCompensation(op, false)
		logger.ErrorCtx(ctx, "compensation failed, stores may be inconsistent",
			logger.KeyPath, path, logger.KeyError, err)
		return
	}
	f.metrics.RecordCompensation(op, true)
}

// cleanPath normalizes p for mutation, rejecting entries named like the
// sidecar file.
func (f *FS) cleanPath(p string) (string, error) {
	cleaned, err := store.CleanPath(p)
	if err != nil {
		return "", err
	}
	if cleaned != "" && store.Base(cleaned) == f.codec.Filename() {
		return "", fmt.Errorf("%q: %w", cleaned, ErrReservedName)
	}
	return cleaned, nil
}

// writeDescriptor encodes d and stores it as the sidecar of d.Path, creating
// the sidecar's directory when needed.
func (f *FS) writeDescriptor(ctx context.Context, d *metadata.Descriptor) error {
	data, err := f.codec.Encode(d)
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", d.Path, err)
	}

	if err := f.meta.MkdirAll(ctx, d.Path); err != nil {
		return err
	}
	return f.meta.WriteFile(ctx, f.SidecarPath(d.Path), data)
}

// readDescriptor loads and decodes the sidecar of p.
func (f *FS) readDescriptor(ctx context.Context, p string) (*metadata.Descriptor, error) {
	data, err := f.meta.ReadFile(ctx, f.SidecarPath(p))
	if err != nil {
		return nil, err
	}

	d, err := f.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", p, err)
	}
	return d, nil
}
