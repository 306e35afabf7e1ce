package dualfs

import (
	"context"
	"fmt"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/store"
)

// RemoveDir removes the empty directory-entity at p.
//
// Emptiness is checked before either store is touched, so a non-empty
// directory yields store.ErrNotEmpty with both stores unchanged.
func (f *FS) RemoveDir(ctx context.Context, p string) (err error) {
	p, err = store.CleanPath(p)
	if err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, "rmdir", logger.KeyPath, p)
	defer func() { done(err) }()

	if err := f.requireEmptyDir(ctx, p); err != nil {
		return err
	}
	return f.removeEntry(ctx, p, f.content.Remove)
}

// RemoveAll removes the entry at p and everything below it from both stores.
func (f *FS) RemoveAll(ctx context.Context, p string) (err error) {
	p, err = store.CleanPath(p)
	if err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, "rmall", logger.KeyPath, p, logger.KeyRecursive, true)
	defer func() { done(err) }()

	return f.removeEntry(ctx, p, f.content.RemoveAll)
}

// Remove removes the file-entity, or empty directory-entity, at p.
func (f *FS) Remove(ctx context.Context, p string) (err error) {
	p, err = store.CleanPath(p)
	if err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, "rm", logger.KeyPath, p)
	defer func() { done(err) }()

	info, err := f.content.Stat(ctx, p)
	if err != nil {
		return err
	}
	if info.IsDir {
		if err := f.requireEmptyDir(ctx, p); err != nil {
			return err
		}
	}
	return f.removeEntry(ctx, p, f.content.Remove)
}

// removeEntry deletes the descriptors of p, then the content entry.
//
// A failed metadata removal aborts the operation only when metadata existed
// at p; an entry that never had a descriptor is still removed from the
// content store.
func (f *FS) removeEntry(ctx context.Context, p string, remove func(context.Context, string) error) error {
	if p == "" {
		return fmt.Errorf("remove root: %w", store.ErrInvalidPath)
	}

	existed, err := f.meta.Exists(ctx, p)
	if err != nil {
		// Unknown is treated as present so a failed removal below aborts.
		existed = true
	}

	if err := f.meta.RemoveAll(ctx, p); err != nil {
		if existed {
			return err
		}
		logger.DebugCtx(ctx, "no metadata to remove", logger.KeyPath, p, logger.KeyError, err)
	}

	return remove(ctx, p)
}

func (f *FS) requireEmptyDir(ctx context.Context, p string) error {
	children, err := f.content.ReadDir(ctx, p)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("rmdir %s: %w", p, store.ErrNotEmpty)
	}
	return nil
}
