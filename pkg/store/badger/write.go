package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Open opens the file at p. The returned handle buffers the content in
// memory and publishes it in a single transaction on Sync or Close.
func (s *Store) Open(ctx context.Context, p string, mode store.OpenMode) (store.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == "" {
		return nil, fmt.Errorf("open %s: %w", p, store.ErrIsDir)
	}

	var initial []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		switch {
		case e != nil && e.kind == kindDir:
			return fmt.Errorf("open %s: %w", p, store.ErrIsDir)
		case e != nil && mode&store.OpenExclusive != 0:
			return fmt.Errorf("open %s: %w", p, store.ErrExists)
		case e == nil && !mode.Creates():
			return fmt.Errorf("open %s: %w", p, store.ErrNotFound)
		case e == nil:
			return requireParentDir(txn, "open", p)
		}
		initial = e.data
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !mode.Mutates() {
		return store.NewBufferFile(p, initial, mode, nil), nil
	}
	return store.NewBufferFile(p, initial, mode, func(data []byte) error {
		return s.writeFile(p, data)
	}), nil
}

// WriteFile creates or truncates the file at p and writes data.
func (s *Store) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeFile(p, data)
}

func (s *Store) writeFile(p string, data []byte) error {
	if p == "" {
		return fmt.Errorf("write %s: %w", p, store.ErrIsDir)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, p)
		if err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		if e != nil && e.kind == kindDir {
			return fmt.Errorf("write %s: %w", p, store.ErrIsDir)
		}
		if err := requireParentDir(txn, "write", p); err != nil {
			return err
		}
		return putEntry(txn, p, entry{kind: kindFile, modTime: s.now(), data: data})
	})
}

// Mkdir creates the directory p. Its parent must exist.
func (s *Store) Mkdir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("mkdir %s: %w", p, store.ErrExists)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, p)
		if err != nil {
			return fmt.Errorf("mkdir %s: %w", p, err)
		}
		if e != nil {
			return fmt.Errorf("mkdir %s: %w", p, store.ErrExists)
		}
		if err := requireParentDir(txn, "mkdir", p); err != nil {
			return err
		}
		return putEntry(txn, p, entry{kind: kindDir, modTime: s.now()})
	})
}

// MkdirAll creates p and any missing parents.
func (s *Store) MkdirAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		for _, prefix := range store.Ancestors(p) {
			e, err := getEntry(txn, prefix)
			if err != nil {
				return fmt.Errorf("mkdir %s: %w", p, err)
			}
			if e == nil {
				if err := putEntry(txn, prefix, entry{kind: kindDir, modTime: s.now()}); err != nil {
					return err
				}
				continue
			}
			if e.kind != kindDir {
				return fmt.Errorf("mkdir %s: %s: %w", p, prefix, store.ErrNotDir)
			}
		}
		return nil
	})
}
