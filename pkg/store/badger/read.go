package badger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

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

	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(entryKey(p))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", p, err)
	}
	return exists, nil
}

// Stat returns information about the entry at p.
func (s *Store) Stat(ctx context.Context, p string) (*store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == "" {
		return &store.Info{IsDir: true}, nil
	}

	var info *store.Info
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(entryKey(p))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("stat %s: %w", p, store.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		info, err = statItem(p, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ReadFile returns the content of the file at p.
func (s *Store) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if e == nil {
			return fmt.Errorf("read %s: %w", p, store.ErrNotFound)
		}
		if e.kind == kindDir {
			return fmt.Errorf("read %s: %w", p, store.ErrIsDir)
		}
		data = e.data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ReadDir lists the children of the directory at p, sorted by name.
func (s *Store) ReadDir(ctx context.Context, p string) ([]store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []store.Info
	err := s.db.View(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, p)
		if err != nil {
			return fmt.Errorf("readdir %s: %w", p, err)
		}
		if e == nil {
			return fmt.Errorf("readdir %s: %w", p, store.ErrNotFound)
		}
		if e.kind != kindDir {
			return fmt.Errorf("readdir %s: %w", p, store.ErrNotDir)
		}

		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := childrenPrefix(p)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			child := store.Join(p, string(it.Item().Key()[len(prefix):]))

			item, err := txn.Get(entryKey(child))
			if err != nil {
				return fmt.Errorf("readdir %s: %s: %w", p, child, err)
			}
			info, err := statItem(child, item)
			if err != nil {
				return fmt.Errorf("readdir %s: %w", p, err)
			}
			out = append(out, *info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []store.Info{}
	}
	return out, nil
}

// Checksum returns the hex SHA-256 of the file at p.
func (s *Store) Checksum(ctx context.Context, p string) (string, error) {
	data, err := s.ReadFile(ctx, p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
