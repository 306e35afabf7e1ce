package dualfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/store"
)

// MakeDir creates the directory-entity at p.
//
// The content directory is created first, then its descriptor. If the
// descriptor cannot be written the content directory is removed again and
// the descriptor error is returned.
//
// Returns:
//   - store.ErrNotDir if p is an existing file
//   - store.ErrExists if p is an existing directory
//   - store.ErrNotFound if the parent directory is missing
func (f *FS) MakeDir(ctx context.Context, p string) (err error) {
	p, err = f.cleanPath(p)
	if err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, "mkdir", logger.KeyPath, p)
	defer func() { done(err) }()

	if p == "" {
		return fmt.Errorf("mkdir %q: %w", p, store.ErrExists)
	}

	isFile, err := store.IsFile(ctx, f.content, p)
	if err != nil {
		return err
	}
	if isFile {
		return fmt.Errorf("mkdir %s: %w", p, store.ErrNotDir)
	}

	if err := f.content.Mkdir(ctx, p); err != nil {
		return err
	}

	if err := f.writeDescriptor(ctx, f.gen.GenerateObject(p)); err != nil {
		f.compensate(ctx, "mkdir", p, err, func() error {
			return f.discard(ctx, p, f.content.Remove)
		})
		return err
	}
	return nil
}

// MakeDirs creates the directory-entity at p together with any missing
// ancestors, ancestors first.
//
// Every prefix of p that has no descriptor gets one; descriptors of existing
// directory-entities are kept. If any step fails, the outermost directory
// created by this call is removed recursively from both stores and the
// original error is returned. An existing file anywhere along p yields
// store.ErrNotDir.
func (f *FS) MakeDirs(ctx context.Context, p string) (err error) {
	p, err = f.cleanPath(p)
	if err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, "mkdirs", logger.KeyPath, p)
	defer func() { done(err) }()

	if p == "" {
		return nil
	}
	prefixes := store.Ancestors(p)

	// ========================================================================
	// Step 1: Find the outermost prefix this call will create
	// ========================================================================

	created := ""
	for _, prefix := range prefixes {
		info, err := f.content.Stat(ctx, prefix)
		if errors.Is(err, store.ErrNotFound) {
			created = prefix
			break
		}
		if err != nil {
			return err
		}
		if !info.IsDir {
			return fmt.Errorf("mkdirs %s: %w", prefix, store.ErrNotDir)
		}
	}

	// ========================================================================
	// Step 2: Content directories
	// ========================================================================

	if err := f.content.MkdirAll(ctx, p); err != nil {
		if created != "" {
			f.compensate(ctx, "mkdirs", created, err, func() error {
				return f.discard(ctx, created, f.content.RemoveAll)
			})
		}
		return err
	}

	// ========================================================================
	// Step 3: Descriptors, ancestors first
	// ========================================================================

	for _, prefix := range prefixes {
		if created == "" || !store.IsWithin(prefix, created) {
			has, err := store.IsFile(ctx, f.meta, f.SidecarPath(prefix))
			if err == nil && has {
				continue
			}
		}

		if err := f.writeDescriptor(ctx, f.gen.GenerateObject(prefix)); err != nil {
			if created != "" {
				f.compensate(ctx, "mkdirs", created, err, func() error {
					return f.discard(ctx, created, f.content.RemoveAll)
				})
			}
			return err
		}
	}
	return nil
}

// WriteFile creates or replaces the file-entity at p with data and
// regenerates its descriptor from data.
//
// The parent directory-entity must exist. If the descriptor cannot be
// written the content file is removed and the descriptor error is returned.
func (f *FS) WriteFile(ctx context.Context, p string, data []byte) (err error) {
	p, err = f.cleanPath(p)
	if err != nil {
		return err
	}

	ctx, done := f.startOp(ctx, "write", logger.KeyPath, p, logger.KeySize, len(data))
	defer func() { done(err) }()

	if p == "" {
		return fmt.Errorf("write %q: %w", p, store.ErrIsDir)
	}

	if err := f.content.WriteFile(ctx, p, data); err != nil {
		return err
	}

	d, err := f.gen.GenerateFile(p, data)
	if err == nil {
		err = f.writeDescriptor(ctx, d)
	}
	if err != nil {
		f.compensate(ctx, "write", p, err, func() error {
			return f.discard(ctx, p, f.content.Remove)
		})
		return err
	}
	return nil
}

// discard undoes a creation: it removes the content entry with remove, then
// any descriptor left in the metadata store.
func (f *FS) discard(ctx context.Context, p string, remove func(context.Context, string) error) error {
	if err := remove(ctx, p); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := f.meta.RemoveAll(ctx, p); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
