// Package afs adapts any afero filesystem to the store.Store interface.
//
// This file contains the adapter type, its constructor and the error mapping
// shared by the read, write and tree operations.
package afs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store"
)

const (
	defaultDirMode  os.FileMode = 0755
	defaultFileMode os.FileMode = 0644
)

// Store implements store.Store on top of an afero.Fs.
//
// The local disk, in-memory and archive backends are thin constructors around
// this adapter, each choosing a different afero filesystem. Entry Paths are
// mapped to absolute afero paths by prefixing "/".
//
// Thread Safety:
// Safe for concurrent use as long as the underlying afero.Fs is (OsFs and
// MemMapFs both are).
type Store struct {
	fs       afero.Fs
	name     string
	readOnly bool
	dirMode  os.FileMode
	fileMode os.FileMode
}

// Option configures a Store.
type Option func(*Store)

// WithName sets the name reported by String, used in log records.
func WithName(name string) Option {
	return func(s *Store) { s.name = name }
}

// WithReadOnly rejects every mutating operation with store.ErrReadOnly.
func WithReadOnly() Option {
	return func(s *Store) { s.readOnly = true }
}

// WithModes sets the permission bits used for new directories and files.
func WithModes(dirMode, fileMode os.FileMode) Option {
	return func(s *Store) {
		if dirMode != 0 {
			s.dirMode = dirMode
		}
		if fileMode != 0 {
			s.fileMode = fileMode
		}
	}
}

// New wraps fsys in a Store.
func New(fsys afero.Fs, opts ...Option) *Store {
	s := &Store{
		fs:       fsys,
		name:     fsys.Name(),
		dirMode:  defaultDirMode,
		fileMode: defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.readOnly {
		s.fs = afero.NewReadOnlyFs(s.fs)
	}
	return s
}

// Fs returns the underlying afero filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// ReadOnly reports whether mutating operations are rejected.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

func (s *Store) String() string {
	return s.name
}

// abs maps an Entry Path to the afero path.
func abs(p string) string {
	return "/" + p
}

func (s *Store) checkWritable(op, p string) error {
	if s.readOnly {
		return fmt.Errorf("%s %s: %w", op, p, store.ErrReadOnly)
	}
	return nil
}

// stat returns info for p, or nil when nothing exists there.
func (s *Store) stat(p string) (os.FileInfo, error) {
	fi, err := s.fs.Stat(abs(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, err
	}
	return fi, nil
}

// requireParentDir verifies that the parent of p is an existing directory.
func (s *Store) requireParentDir(op, p string) error {
	parent := store.Dir(p)
	if parent == "" {
		return nil
	}
	fi, err := s.stat(parent)
	if err != nil {
		return mapError(op, p, err)
	}
	if fi == nil {
		return fmt.Errorf("%s %s: parent %s: %w", op, p, parent, store.ErrNotFound)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s %s: parent %s: %w", op, p, parent, store.ErrNotDir)
	}
	return nil
}

func toInfo(p string, fi os.FileInfo) *store.Info {
	info := &store.Info{
		Name:    store.Base(p),
		Path:    p,
		IsDir:   fi.IsDir(),
		ModTime: fi.ModTime(),
	}
	if !fi.IsDir() {
		info.Size = fi.Size()
	}
	return info
}

// mapError translates afero and OS errors into store sentinels.
func mapError(op, p string, err error) error {
	if err == nil {
		return nil
	}

	var sentinel error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		sentinel = store.ErrNotFound
	case errors.Is(err, fs.ErrExist):
		sentinel = store.ErrExists
	case errors.Is(err, syscall.ENOTEMPTY):
		sentinel = store.ErrNotEmpty
	case errors.Is(err, syscall.ENOTDIR):
		sentinel = store.ErrNotDir
	case errors.Is(err, syscall.EISDIR):
		sentinel = store.ErrIsDir
	case errors.Is(err, syscall.EPERM), errors.Is(err, syscall.EROFS):
		sentinel = store.ErrReadOnly
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%s %s: %w", op, p, err)
	}
	return fmt.Errorf("%s %s: %w", op, p, sentinel)
}

var _ store.Store = (*Store)(nil)
