package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Remove deletes the file or empty directory at p.
func (s *Store) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("remove root: %w", store.ErrInvalidPath)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, p)
		if err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		if e == nil {
			return fmt.Errorf("remove %s: %w", p, store.ErrNotFound)
		}
		if e.kind == kindDir && hasChildren(txn, p) {
			return fmt.Errorf("remove %s: %w", p, store.ErrNotEmpty)
		}
		return deleteEntry(txn, p)
	})
}

// RemoveAll deletes p and everything below it. Removing the root empties
// the store.
func (s *Store) RemoveAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var paths []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		if p != "" {
			e, err := getEntry(txn, p)
			if err != nil {
				return fmt.Errorf("removeall %s: %w", p, err)
			}
			if e == nil {
				return fmt.Errorf("removeall %s: %w", p, store.ErrNotFound)
			}
			paths = append(paths, p)
		}
		paths = append(paths, subtreePaths(txn, p)...)
		return nil
	})
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, sub := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Delete(entryKey(sub)); err != nil {
			return fmt.Errorf("removeall %s: %w", p, err)
		}
		if err := wb.Delete(childKey(sub)); err != nil {
			return fmt.Errorf("removeall %s: %w", p, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("removeall %s: %w", p, err)
	}
	return nil
}

// Copy duplicates the file or tree at src to dst.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	return s.relocate(ctx, "copy", src, dst, false)
}

// Move relocates the file or tree at src to dst.
func (s *Store) Move(ctx context.Context, src, dst string) error {
	return s.relocate(ctx, "move", src, dst, true)
}

type snapshotEntry struct {
	path  string
	entry entry
}

func (s *Store) relocate(ctx context.Context, op, src, dst string, removeSource bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if src == "" || dst == "" {
		return fmt.Errorf("%s %q to %q: %w", op, src, dst, store.ErrInvalidPath)
	}
	if store.IsWithin(dst, src) {
		return fmt.Errorf("%s %s into itself (%s): %w", op, src, dst, store.ErrInvalidPath)
	}

	// ========================================================================
	// Step 1: Validate and snapshot the source tree
	// ========================================================================

	var snapshot []snapshotEntry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		e, err := getEntry(txn, src)
		if err != nil {
			return fmt.Errorf("%s %s: %w", op, src, err)
		}
		if e == nil {
			return fmt.Errorf("%s %s: %w", op, src, store.ErrNotFound)
		}
		existing, err := getEntry(txn, dst)
		if err != nil {
			return fmt.Errorf("%s %s: %w", op, dst, err)
		}
		if existing != nil {
			return fmt.Errorf("%s %s: %w", op, dst, store.ErrExists)
		}
		if err := requireParentDir(txn, op, dst); err != nil {
			return err
		}

		snapshot = append(snapshot, snapshotEntry{path: src, entry: *e})
		for _, sub := range subtreePaths(txn, src) {
			se, err := getEntry(txn, sub)
			if err != nil {
				return fmt.Errorf("%s %s: %w", op, sub, err)
			}
			if se != nil {
				snapshot = append(snapshot, snapshotEntry{path: sub, entry: *se})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// ========================================================================
	// Step 2: Write the copies (and delete the originals for a move)
	// ========================================================================

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, se := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := store.Rebase(se.path, src, dst)
		e := se.entry
		if !removeSource {
			e.modTime = s.now()
		}
		if err := wb.Set(entryKey(target), encodeEntry(e)); err != nil {
			return fmt.Errorf("%s %s: %w", op, target, err)
		}
		if err := wb.Set(childKey(target), []byte{byte(e.kind)}); err != nil {
			return fmt.Errorf("%s %s: %w", op, target, err)
		}

		if removeSource {
			if err := wb.Delete(entryKey(se.path)); err != nil {
				return fmt.Errorf("%s %s: %w", op, se.path, err)
			}
			if err := wb.Delete(childKey(se.path)); err != nil {
				return fmt.Errorf("%s %s: %w", op, se.path, err)
			}
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("%s %s: %w", op, src, err)
	}
	return nil
}
