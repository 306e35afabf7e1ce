// Package fs implements a local disk store rooted at a directory.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store/afs"
)

// Config holds the local disk store settings.
type Config struct {
	// Path is the root directory. It is created if missing.
	Path string `mapstructure:"path" validate:"required"`

	// DirMode and FileMode are the permission bits for new entries
	// (defaults 0755 and 0644).
	DirMode  uint32 `mapstructure:"dir_mode"`
	FileMode uint32 `mapstructure:"file_mode"`

	// ReadOnly rejects every mutating operation.
	ReadOnly bool `mapstructure:"read_only"`
}

// Store is a store.Store backed by a directory on the local filesystem.
//
// Entries map one to one onto files and directories below the root, so the
// content store of a tulip filesystem can be browsed with ordinary tools.
type Store struct {
	*afs.Store
	root string
}

// New creates a local disk store.
//
// Parameters:
//   - ctx: Context for cancellation (checked before touching the disk)
//   - cfg: Store configuration
//
// Returns:
//   - *Store: Initialized store
//   - error: If the root cannot be created or is not a directory
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("fs store: path is required")
	}

	root, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("fs store: resolve %s: %w", cfg.Path, err)
	}

	dirMode := os.FileMode(cfg.DirMode)
	if dirMode == 0 {
		dirMode = 0755
	}

	if cfg.ReadOnly {
		fi, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("fs store: %w", err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("fs store: %s is not a directory", root)
		}
	} else if err := os.MkdirAll(root, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	opts := []afs.Option{
		afs.WithName("fs:" + root),
		afs.WithModes(dirMode, os.FileMode(cfg.FileMode)),
	}
	if cfg.ReadOnly {
		opts = append(opts, afs.WithReadOnly())
	}

	return &Store{
		Store: afs.New(afero.NewBasePathFs(afero.NewOsFs(), root), opts...),
		root:  root,
	}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}
