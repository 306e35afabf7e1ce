// Package repository wires a content store and a metadata store into a
// dual-store filesystem and hands out entities bound to it.
//
// Construction strategies:
//   - New: explicit backends
//   - FromLocalRoot: two sibling directories (objects/, assets/) below one root
//   - InMemory: two in-memory stores
//   - FromConfig: backends, sidecar format and metrics from a config.Config
package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/config"
	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/entity"
	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/fs"
	"github.com/marmos91/tulipfs/pkg/store/memory"
)

// Repository owns a dual-store filesystem and the resources behind it.
type Repository struct {
	fs      *dualfs.FS
	metrics *config.MetricsResult
}

// New creates a Repository over explicit backends.
func New(content, meta store.Store, opts ...dualfs.Option) *Repository {
	return &Repository{fs: dualfs.New(content, meta, opts...)}
}

// FromLocalRoot creates a Repository whose content lives in root/objects
// and whose metadata lives in root/assets. Both directories are created if
// missing.
func FromLocalRoot(ctx context.Context, root string, opts ...dualfs.Option) (*Repository, error) {
	content, err := fs.New(ctx, fs.Config{Path: filepath.Join(root, config.ContentDirName)})
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	meta, err := fs.New(ctx, fs.Config{Path: filepath.Join(root, config.MetadataDirName)})
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	logger.DebugCtx(ctx, "Repository opened",
		logger.KeyStore, content.String(),
		"metadata_store", meta.String())

	return New(content, meta, opts...), nil
}

// InMemory creates a Repository over two empty in-memory stores.
func InMemory(opts ...dualfs.Option) *Repository {
	return New(memory.New(), memory.New(), opts...)
}

// FromConfig creates a Repository from a loaded configuration.
//
// Parameters:
//   - ctx: Context for backend initialization
//   - cfg: Validated configuration
//
// Returns:
//   - *Repository: Repository whose Close releases both backends and
//     flushes metrics
//   - error: On invalid sidecar settings or backend failures
func FromConfig(ctx context.Context, cfg *config.Config) (*Repository, error) {
	// ========================================================================
	// Step 1: Sidecar generator and codec
	// ========================================================================

	gen, err := config.NewGenerator(&cfg.Sidecar)
	if err != nil {
		return nil, err
	}
	codec, err := config.NewCodec(&cfg.Sidecar)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// Step 2: Backends
	// ========================================================================

	content, err := config.CreateStore(ctx, &cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("content store: %w", err)
	}
	meta, err := config.CreateStore(ctx, &cfg.Metadata)
	if err != nil {
		_ = closeStore(content)
		return nil, fmt.Errorf("metadata store: %w", err)
	}

	// ========================================================================
	// Step 3: Metrics
	// ========================================================================

	mr := config.InitializeMetrics(cfg)

	opts := []dualfs.Option{dualfs.WithGenerator(gen), dualfs.WithCodec(codec)}
	if mr.DualFS != nil {
		opts = append(opts, dualfs.WithMetrics(mr.DualFS))
	}

	logger.DebugCtx(ctx, "Repository configured",
		"content_type", cfg.Content.Type,
		"metadata_type", cfg.Metadata.Type,
		"sidecar", codec.Filename())

	return &Repository{
		fs:      dualfs.New(content, meta, opts...),
		metrics: mr,
	}, nil
}

// FS returns the underlying dual-store filesystem.
func (r *Repository) FS() *dualfs.FS {
	return r.fs
}

// CreateObject creates a directory-entity and its missing ancestors, then
// applies mixins to its descriptor.
func (r *Repository) CreateObject(ctx context.Context, p string, mixins map[string]any) (*entity.Object, error) {
	o, err := entity.NewObject(r.fs, p, mixins)
	if err != nil {
		return nil, err
	}
	if err := o.Save(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// CreateFile writes a file-entity, creating missing parent
// directory-entities first.
func (r *Repository) CreateFile(ctx context.Context, p string, content []byte, mixins map[string]any) (*entity.File, error) {
	f, err := entity.NewFile(r.fs, p, content, mixins)
	if err != nil {
		return nil, err
	}

	if parent := store.Dir(f.Path()); parent != "" {
		exists, err := r.fs.IsDir(ctx, parent)
		if err != nil {
			return nil, err
		}
		if !exists {
			if _, err := r.CreateObject(ctx, parent, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := f.Save(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteObject removes the directory-entity at p. Without recursive it
// must be empty. A file at p fails with entity.ErrKindMismatch.
func (r *Repository) DeleteObject(ctx context.Context, p string, recursive bool) error {
	e, err := r.Get(ctx, p)
	if err != nil {
		return err
	}
	o, ok := e.(*entity.Object)
	if !ok {
		return fmt.Errorf("delete object %s: %w", p, entity.ErrKindMismatch)
	}
	return o.Delete(ctx, recursive)
}

// DeleteFile removes the file-entity at p. An object at p fails with
// entity.ErrKindMismatch.
func (r *Repository) DeleteFile(ctx context.Context, p string) error {
	e, err := r.Get(ctx, p)
	if err != nil {
		return err
	}
	f, ok := e.(*entity.File)
	if !ok {
		return fmt.Errorf("delete file %s: %w", p, entity.ErrKindMismatch)
	}
	return f.Delete(ctx)
}

// Get returns the entity stored at p, typed by its descriptor.
func (r *Repository) Get(ctx context.Context, p string) (entity.Entity, error) {
	return entity.Load(ctx, r.fs, p)
}

// Close writes pending metrics and releases backends that hold resources.
// All steps run; the first error is returned.
func (r *Repository) Close() error {
	var errs []error
	if err := r.metrics.Flush(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, closeStore(r.fs.Content()), closeStore(r.fs.Meta()))
	return errors.Join(errs...)
}

func closeStore(s store.Store) error {
	if c, ok := s.(store.Closer); ok {
		return c.Close()
	}
	return nil
}
