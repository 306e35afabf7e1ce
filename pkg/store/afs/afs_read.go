package afs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Exists reports whether an entry exists at p.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p == "" {
		return true, nil
	}

	fi, err := s.stat(p)
	if err != nil {
		return false, mapError("exists", p, err)
	}
	return fi != nil, nil
}

// Stat returns information about the entry at p.
func (s *Store) Stat(ctx context.Context, p string) (*store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fi, err := s.stat(p)
	if err != nil {
		return nil, mapError("stat", p, err)
	}
	if fi == nil {
		return nil, fmt.Errorf("stat %s: %w", p, store.ErrNotFound)
	}
	return toInfo(p, fi), nil
}

// ReadFile returns the content of the file at p.
func (s *Store) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fi, err := s.stat(p)
	if err != nil {
		return nil, mapError("read", p, err)
	}
	if fi == nil {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrNotFound)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrIsDir)
	}

	data, err := afero.ReadFile(s.fs, abs(p))
	if err != nil {
		return nil, mapError("read", p, err)
	}
	return data, nil
}

// ReadDir lists the children of the directory at p, sorted by name.
func (s *Store) ReadDir(ctx context.Context, p string) ([]store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fi, err := s.stat(p)
	if err != nil {
		return nil, mapError("readdir", p, err)
	}
	if fi == nil {
		return nil, fmt.Errorf("readdir %s: %w", p, store.ErrNotFound)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("readdir %s: %w", p, store.ErrNotDir)
	}

	entries, err := afero.ReadDir(s.fs, abs(p))
	if err != nil {
		return nil, mapError("readdir", p, err)
	}

	out := make([]store.Info, 0, len(entries))
	for _, e := range entries {
		out = append(out, *toInfo(store.Join(p, e.Name()), e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Checksum returns the hex SHA-256 of the file at p.
func (s *Store) Checksum(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fi, err := s.stat(p)
	if err != nil {
		return "", mapError("checksum", p, err)
	}
	if fi == nil {
		return "", fmt.Errorf("checksum %s: %w", p, store.ErrNotFound)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("checksum %s: %w", p, store.ErrIsDir)
	}

	f, err := s.fs.Open(abs(p))
	if err != nil {
		return "", mapError("checksum", p, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", mapError("checksum", p, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
