package dualfs

import (
	"context"
	"fmt"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
)

// ReadMetadata reads and decodes the descriptor of the entry at p. Nothing is
// cached; every call reads the metadata store.
func (f *FS) ReadMetadata(ctx context.Context, p string) (*metadata.Descriptor, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return nil, err
	}
	return f.readDescriptor(ctx, p)
}

// WriteMetadata stores d as the descriptor of d.Path, replacing any existing
// one. The content entry must exist.
func (f *FS) WriteMetadata(ctx context.Context, d *metadata.Descriptor) (err error) {
	p, err := f.cleanPath(d.Path)
	if err != nil {
		return err
	}
	if p != d.Path {
		d = d.Relocate(p)
	}

	ctx, done := f.startOp(ctx, "write-meta", logger.KeyPath, p)
	defer func() { done(err) }()

	exists, err := f.content.Exists(ctx, p)
	if err != nil {
		return err
	}
	if !exists || p == "" {
		return fmt.Errorf("write metadata %q: %w", p, store.ErrNotFound)
	}
	return f.writeDescriptor(ctx, d)
}

// UpdateMetadata merges mixins over the current descriptor of p and writes
// the result back in full.
//
// Mixin keys win. created_at is preserved and updated_at stamped with the
// generator's clock unless the mixins set them. Mixins may not change the
// type, path or name of the entry.
func (f *FS) UpdateMetadata(ctx context.Context, p string, mixins map[string]any) (d *metadata.Descriptor, err error) {
	p, err = store.CleanPath(p)
	if err != nil {
		return nil, err
	}

	ctx, done := f.startOp(ctx, "update-meta", logger.KeyPath, p)
	defer func() { done(err) }()

	current, err := f.readDescriptor(ctx, p)
	if err != nil {
		return nil, err
	}

	merged, err := current.Merge(mixins)
	if err != nil {
		return nil, err
	}
	if merged.Type != current.Type || merged.Path != current.Path || merged.Name != current.Name {
		return nil, fmt.Errorf("update metadata %s: identity fields are immutable: %w",
			p, metadata.ErrInvalidDescriptor)
	}

	if _, ok := mixins[metadata.KeyCreatedAt]; !ok {
		merged.CreatedAt = current.CreatedAt
	}
	if _, ok := mixins[metadata.KeyUpdatedAt]; !ok {
		merged.UpdatedAt = f.gen.Now()
	}

	if err := f.writeDescriptor(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// RegenerateMetadata replaces the descriptor of p with a fresh one generated
// from the content store. Extension fields are dropped.
func (f *FS) RegenerateMetadata(ctx context.Context, p string) (d *metadata.Descriptor, err error) {
	p, err = f.cleanPath(p)
	if err != nil {
		return nil, err
	}

	ctx, done := f.startOp(ctx, "regenerate-meta", logger.KeyPath, p)
	defer func() { done(err) }()

	if d, err = f.describe(ctx, p); err != nil {
		return nil, err
	}
	if err := f.writeDescriptor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// describe generates the descriptor of the content entry at p.
func (f *FS) describe(ctx context.Context, p string) (*metadata.Descriptor, error) {
	if p == "" {
		return nil, fmt.Errorf("describe root: %w", store.ErrInvalidPath)
	}

	info, err := f.content.Stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return f.gen.GenerateObject(p), nil
	}
	return f.describeFile(ctx, p)
}
