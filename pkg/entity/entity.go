// Package entity provides path-bound views of directory-entities (objects)
// and file-entities (files) in a dual-store filesystem.
//
// Entities hold no state beyond their path, pending mixins and the owning
// filesystem. Every operation goes through dualfs.FS; nothing here touches a
// store directly, and metadata is read fresh on every call.
package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
)

// ErrKindMismatch is returned when a path holds a different kind of entity
// than the one requested.
var ErrKindMismatch = errors.New("entity kind mismatch")

// Entity is either an *Object or a *File.
type Entity interface {
	// Path returns the Entry Path of the entity.
	Path() string

	// Kind reports whether the entity is an object or a file.
	Kind() metadata.Kind

	// MetadataPath returns where the descriptor is stored in the metadata
	// store.
	MetadataPath() string

	// GenerateMetadata builds a fresh descriptor without storing it.
	GenerateMetadata() (*metadata.Descriptor, error)

	// Save creates or rewrites the entity, then applies pending mixins.
	Save(ctx context.Context) error

	// Metadata reads the stored descriptor.
	Metadata(ctx context.Context) (*metadata.Descriptor, error)

	// UpdateMetadata merges mixins into the stored descriptor.
	UpdateMetadata(ctx context.Context, mixins map[string]any) (*metadata.Descriptor, error)

	entity()
}

// base is the record shared by both entity kinds.
type base struct {
	fs     *dualfs.FS
	path   string
	mixins map[string]any
}

func newBase(fs *dualfs.FS, p string, mixins map[string]any) (base, error) {
	cleaned, err := store.CleanPath(p)
	if err != nil {
		return base{}, err
	}
	if cleaned == "" {
		return base{}, fmt.Errorf("entity at root: %w", store.ErrInvalidPath)
	}
	return base{fs: fs, path: cleaned, mixins: mixins}, nil
}

func (b *base) Path() string { return b.path }

func (b *base) MetadataPath() string { return b.fs.SidecarPath(b.path) }

func (b *base) Metadata(ctx context.Context) (*metadata.Descriptor, error) {
	return b.fs.ReadMetadata(ctx, b.path)
}

func (b *base) UpdateMetadata(ctx context.Context, mixins map[string]any) (*metadata.Descriptor, error) {
	return b.fs.UpdateMetadata(ctx, b.path, mixins)
}

// applyMixins merges the mixins given at construction, if any.
func (b *base) applyMixins(ctx context.Context) error {
	if len(b.mixins) == 0 {
		return nil
	}
	_, err := b.fs.UpdateMetadata(ctx, b.path, b.mixins)
	return err
}

func (b *base) entity() {}

// Load returns the entity stored at p, typed by its descriptor.
func Load(ctx context.Context, fs *dualfs.FS, p string) (Entity, error) {
	d, err := fs.ReadMetadata(ctx, p)
	if err != nil {
		return nil, err
	}

	b, err := newBase(fs, p, nil)
	if err != nil {
		return nil, err
	}
	if d.IsFile() {
		return &File{base: b}, nil
	}
	return &Object{base: b}, nil
}
