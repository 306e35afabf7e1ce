// Package archive exposes a tar archive as a read-only store and exports any
// store into a tar archive.
//
// Archives may be plain or compressed with gzip, bzip2, xz, zstd or lz4; the
// codec is detected from the magic bytes when not configured. A typical use
// is mounting a snapshot produced by Export as the metadata store of a
// read-only repository, or inspecting it with the CLI.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/afs"
)

// Config holds the archive store settings.
type Config struct {
	// Path is the archive file.
	Path string `mapstructure:"path" validate:"required"`

	// Compression forces a codec; empty or "auto" detects it.
	Compression string `mapstructure:"compression"`
}

// Store is a read-only store.Store over the contents of a tar archive.
//
// The archive is decoded once into memory at construction; every mutating
// operation fails with store.ErrReadOnly.
type Store struct {
	*afs.Store
	compression Compression
	entries     int
}

// New opens and loads the archive named by cfg.Path.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("archive store: path is required")
	}

	c, err := ParseCompression(cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("archive store: %w", err)
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("archive store: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(ctx, f, c, cfg.Path)
}

// Load decodes a tar stream into a read-only Store.
//
// Parameters:
//   - ctx: Context checked between tar entries
//   - r: Archive stream
//   - c: Compression, or Auto to detect it
//   - name: Archive name, used as an extension hint and in log records
//
// Returns:
//   - *Store: Loaded store
//   - error: On malformed archives or entries escaping the root
func Load(ctx context.Context, r io.Reader, c Compression, name string) (*Store, error) {
	zr, detected, err := newReader(r, c, name)
	if err != nil {
		return nil, fmt.Errorf("archive %s: open %s stream: %w", name, c, err)
	}
	defer func() { _ = zr.Close() }()

	memfs := afero.NewMemMapFs()
	tr := tar.NewReader(zr)
	entries := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", name, err)
		}

		p, err := store.CleanPath(hdr.Name)
		if err != nil {
			return nil, fmt.Errorf("archive %s: entry %q: %w", name, hdr.Name, err)
		}
		if p == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := memfs.MkdirAll("/"+p, 0755); err != nil {
				return nil, fmt.Errorf("archive %s: %s: %w", name, p, err)
			}
		case tar.TypeReg:
			if err := memfs.MkdirAll("/"+store.Dir(p), 0755); err != nil {
				return nil, fmt.Errorf("archive %s: %s: %w", name, p, err)
			}
			f, err := memfs.Create("/" + p)
			if err != nil {
				return nil, fmt.Errorf("archive %s: %s: %w", name, p, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("archive %s: %s: %w", name, p, err)
			}
			if err := f.Close(); err != nil {
				return nil, fmt.Errorf("archive %s: %s: %w", name, p, err)
			}
		default:
			// Links and special files have no store.Store representation.
			continue
		}

		_ = memfs.Chtimes("/"+p, hdr.ModTime, hdr.ModTime)
		entries++
	}

	return &Store{
		Store:       afs.New(memfs, afs.WithReadOnly(), afs.WithName("archive:"+name)),
		compression: detected,
		entries:     entries,
	}, nil
}

// Compression returns the codec the archive was decoded with.
func (s *Store) Compression() Compression {
	return s.compression
}

// Entries returns the number of files and directories loaded.
func (s *Store) Entries() int {
	return s.entries
}
