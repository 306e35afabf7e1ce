package dualfs

import (
	"context"
	"fmt"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/store"
)

// Move relocates the entry at src to dst.
//
// The content store moves first; a failure there leaves both stores
// untouched. If src had metadata, the metadata subtree is then moved to dst
// and every descriptor below dst is rewritten with its new path and name.
// A failure while mirroring is returned, but the content move is not undone.
func (f *FS) Move(ctx context.Context, src, dst string) error {
	return f.relocate(ctx, "move", src, dst, func(s store.Store) func(context.Context, string, string) error {
		return s.Move
	})
}

// Copy duplicates the entry at src to dst, with the same ordering and
// failure policy as Move. Copied descriptors keep every field except path
// and name.
func (f *FS) Copy(ctx context.Context, src, dst string) error {
	return f.relocate(ctx, "copy", src, dst, func(s store.Store) func(context.Context, string, string) error {
		return s.Copy
	})
}

func (f *FS) relocate(
	ctx context.Context,
	op, src, dst string,
	method func(store.Store) func(context.Context, string, string) error,
) (err error) {
	if src, err = store.CleanPath(src); err != nil {
		return err
	}
	if dst, err = f.cleanPath(dst); err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, op, logger.KeyOldPath, src, logger.KeyNewPath, dst)
	defer func() { done(err) }()

	// ========================================================================
	// Step 1: Content store
	// ========================================================================

	if err := method(f.content)(ctx, src, dst); err != nil {
		return err
	}

	// ========================================================================
	// Step 2: Mirror into the metadata store
	// ========================================================================

	existed, err := f.meta.Exists(ctx, src)
	if err != nil {
		return fmt.Errorf("%s metadata %s: %w", op, src, err)
	}
	if !existed {
		logger.WarnCtx(ctx, "source had no metadata, nothing to mirror",
			logger.KeyOldPath, src, logger.KeyNewPath, dst)
		return nil
	}

	if err := f.meta.MkdirAll(ctx, store.Dir(dst)); err != nil {
		return f.mirrorFailed(ctx, op, src, dst, err)
	}
	if err := method(f.meta)(ctx, src, dst); err != nil {
		return f.mirrorFailed(ctx, op, src, dst, err)
	}

	// ========================================================================
	// Step 3: Rebase descriptors below dst
	// ========================================================================

	if err := f.rebaseDescriptors(ctx, dst); err != nil {
		return f.mirrorFailed(ctx, op, src, dst, err)
	}
	return nil
}

func (f *FS) mirrorFailed(ctx context.Context, op, src, dst string, err error) error {
	f.metrics.RecordMirrorFailure(op)
	logger.ErrorCtx(ctx, "content relocated but metadata mirror failed",
		logger.KeyOldPath, src, logger.KeyNewPath, dst, logger.KeyError, err)
	return err
}

// rebaseDescriptors rewrites every descriptor at or below root whose
// recorded path no longer matches its location.
func (f *FS) rebaseDescriptors(ctx context.Context, root string) error {
	filename := f.codec.Filename()

	return store.Walk(ctx, f.meta, root, func(p string, info *store.Info, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir || store.Base(p) != filename {
			return nil
		}

		entry := store.Dir(p)
		d, err := f.readDescriptor(ctx, entry)
		if err != nil {
			return err
		}
		if d.Path == entry {
			return nil
		}
		return f.writeDescriptor(ctx, d.Relocate(entry))
	})
}
