package afs

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store"
)

// file reports the Entry Path as its name instead of the afero path.
type file struct {
	afero.File
	name string
}

func (f *file) Name() string { return f.name }

// Open opens the file at p with the given mode.
func (s *Store) Open(ctx context.Context, p string, mode store.OpenMode) (store.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mode.Mutates() {
		if err := s.checkWritable("open", p); err != nil {
			return nil, err
		}
	}
	if p == "" {
		return nil, fmt.Errorf("open %s: %w", p, store.ErrIsDir)
	}

	fi, err := s.stat(p)
	if err != nil {
		return nil, mapError("open", p, err)
	}
	switch {
	case fi != nil && fi.IsDir():
		return nil, fmt.Errorf("open %s: %w", p, store.ErrIsDir)
	case fi != nil && mode&store.OpenExclusive != 0:
		return nil, fmt.Errorf("open %s: %w", p, store.ErrExists)
	case fi == nil && !mode.Creates():
		return nil, fmt.Errorf("open %s: %w", p, store.ErrNotFound)
	case fi == nil:
		if err := s.requireParentDir("open", p); err != nil {
			return nil, err
		}
	}

	f, err := s.fs.OpenFile(abs(p), mode.Flag(), s.fileMode)
	if err != nil {
		return nil, mapError("open", p, err)
	}
	return &file{File: f, name: p}, nil
}

// WriteFile creates or truncates the file at p and writes data.
func (s *Store) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("write", p); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("write %s: %w", p, store.ErrIsDir)
	}

	fi, err := s.stat(p)
	if err != nil {
		return mapError("write", p, err)
	}
	if fi != nil && fi.IsDir() {
		return fmt.Errorf("write %s: %w", p, store.ErrIsDir)
	}
	if err := s.requireParentDir("write", p); err != nil {
		return err
	}

	if err := afero.WriteFile(s.fs, abs(p), data, s.fileMode); err != nil {
		return mapError("write", p, err)
	}
	return nil
}

// Mkdir creates the directory p. Its parent must exist.
func (s *Store) Mkdir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("mkdir", p); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("mkdir %s: %w", p, store.ErrExists)
	}

	fi, err := s.stat(p)
	if err != nil {
		return mapError("mkdir", p, err)
	}
	if fi != nil {
		return fmt.Errorf("mkdir %s: %w", p, store.ErrExists)
	}
	if err := s.requireParentDir("mkdir", p); err != nil {
		return err
	}

	if err := s.fs.Mkdir(abs(p), s.dirMode); err != nil {
		return mapError("mkdir", p, err)
	}
	return nil
}

// MkdirAll creates p and any missing parents.
func (s *Store) MkdirAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("mkdir", p); err != nil {
		return err
	}

	// MemMapFs happily creates a directory "below" a file, so walk the
	// prefixes first.
	for _, prefix := range store.Ancestors(p) {
		fi, err := s.stat(prefix)
		if err != nil {
			return mapError("mkdir", p, err)
		}
		if fi != nil && !fi.IsDir() {
			return fmt.Errorf("mkdir %s: %s: %w", p, prefix, store.ErrNotDir)
		}
	}

	if err := s.fs.MkdirAll(abs(p), s.dirMode); err != nil {
		return mapError("mkdir", p, err)
	}
	return nil
}
