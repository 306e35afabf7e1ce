package dualfs

import (
	"context"
	"fmt"
	"io"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
)

// OpenFile opens the content file at p.
//
// Read-only opens return the content store's file unchanged and never touch
// the metadata store. Mutating modes return a *Handle that regenerates the
// file's descriptor when closed.
func (f *FS) OpenFile(ctx context.Context, p string, mode store.OpenMode) (file store.File, err error) {
	if mode.Mutates() {
		p, err = f.cleanPath(p)
	} else {
		p, err = store.CleanPath(p)
	}
	if err != nil {
		return nil, err
	}

	opCtx, done := f.startOp(ctx, "open", logger.KeyPath, p, logger.KeyMode, mode.String())
	defer func() { done(err) }()

	file, err = f.content.Open(opCtx, p, mode)
	if err != nil {
		return nil, err
	}
	if !mode.Mutates() {
		return file, nil
	}

	return &Handle{
		fs:   f,
		ctx:  opCtx,
		path: p,
		file: file,
	}, nil
}

// Handle is a content file opened in a mutating mode. Closing it writes the
// file's descriptor, generated from the content as it was committed.
//
// Reads, writes and seeks go straight to the wrapped file.
type Handle struct {
	fs   *FS
	ctx  context.Context
	path string
	file store.File

	closed bool
}

var _ store.File = (*Handle)(nil)

func (h *Handle) Read(p []byte) (int, error)  { return h.file.Read(p) }
func (h *Handle) Write(p []byte) (int, error) { return h.file.Write(p) }

func (h *Handle) WriteString(s string) (int, error) {
	return io.WriteString(h.file, s)
}

func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	return h.file.Seek(offset, whence)
}

// Name returns the Entry Path the handle was opened with.
func (h *Handle) Name() string { return h.path }

// Sync flushes the wrapped file. The descriptor is only written on Close.
func (h *Handle) Sync() error { return h.file.Sync() }

// Unwrap returns the wrapped content file.
func (h *Handle) Unwrap() store.File { return h.file }

// Close closes the wrapped file and writes the descriptor.
//
// If the entry no longer exists in the content store, or its descriptor
// cannot be generated or written, the content entry is removed and the
// failure returned. Closing again is a no-op returning nil.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	ctx, done := h.fs.startOp(h.ctx, "close", logger.KeyPath, h.path)
	err := h.close(ctx)
	done(err)
	return err
}

func (h *Handle) close(ctx context.Context) error {
	if err := h.file.Close(); err != nil {
		return err
	}

	exists, err := h.fs.content.Exists(ctx, h.path)
	if err != nil {
		return err
	}
	if !exists {
		err := fmt.Errorf("close %s: entry vanished: %w", h.path, store.ErrNotFound)
		h.fs.compensate(ctx, "close", h.path, err, func() error {
			return h.fs.discard(ctx, h.path, h.fs.content.Remove)
		})
		return err
	}

	d, err := h.fs.describeFile(ctx, h.path)
	if err == nil {
		err = h.fs.writeDescriptor(ctx, d)
	}
	if err != nil {
		h.fs.compensate(ctx, "close", h.path, err, func() error {
			return h.fs.discard(ctx, h.path, h.fs.content.Remove)
		})
		return err
	}
	return nil
}

// describeFile streams the content file at p through the generator.
func (f *FS) describeFile(ctx context.Context, p string) (*metadata.Descriptor, error) {
	r, err := f.content.Open(ctx, p, store.ModeRead)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return f.gen.GenerateFileFromReader(p, r)
}
