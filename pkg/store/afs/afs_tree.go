package afs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Remove deletes the file or empty directory at p.
func (s *Store) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("remove", p); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("remove root: %w", store.ErrInvalidPath)
	}

	fi, err := s.stat(p)
	if err != nil {
		return mapError("remove", p, err)
	}
	if fi == nil {
		return fmt.Errorf("remove %s: %w", p, store.ErrNotFound)
	}

	if fi.IsDir() {
		// MemMapFs removes non-empty directories without complaint.
		entries, err := afero.ReadDir(s.fs, abs(p))
		if err != nil {
			return mapError("remove", p, err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("remove %s: %w", p, store.ErrNotEmpty)
		}
	}

	if err := s.fs.Remove(abs(p)); err != nil {
		return mapError("remove", p, err)
	}
	return nil
}

// RemoveAll deletes p and everything below it. Removing the root empties the
// store but keeps the root itself.
func (s *Store) RemoveAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("removeall", p); err != nil {
		return err
	}

	if p == "" {
		entries, err := afero.ReadDir(s.fs, abs(p))
		if err != nil {
			return mapError("removeall", p, err)
		}
		for _, e := range entries {
			if err := s.fs.RemoveAll(abs(e.Name())); err != nil {
				return mapError("removeall", e.Name(), err)
			}
		}
		return nil
	}

	fi, err := s.stat(p)
	if err != nil {
		return mapError("removeall", p, err)
	}
	if fi == nil {
		return fmt.Errorf("removeall %s: %w", p, store.ErrNotFound)
	}

	if err := s.fs.RemoveAll(abs(p)); err != nil {
		return mapError("removeall", p, err)
	}
	return nil
}

// Copy duplicates the file or tree at src to dst.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("copy", dst); err != nil {
		return err
	}

	fi, err := s.checkRelocation("copy", src, dst)
	if err != nil {
		return err
	}
	return s.copyTree(ctx, src, dst, fi)
}

// Move relocates the file or tree at src to dst.
//
// Files are renamed. Directories are copied and then removed, because
// directory renames are not uniformly supported across afero filesystems.
func (s *Store) Move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkWritable("move", src); err != nil {
		return err
	}

	fi, err := s.checkRelocation("move", src, dst)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		if err := s.fs.Rename(abs(src), abs(dst)); err != nil {
			return mapError("move", src, err)
		}
		return nil
	}

	if err := s.copyTree(ctx, src, dst, fi); err != nil {
		return err
	}
	if err := s.fs.RemoveAll(abs(src)); err != nil {
		return mapError("move", src, err)
	}
	return nil
}

// checkRelocation validates a copy or move and returns the source info.
func (s *Store) checkRelocation(op, src, dst string) (os.FileInfo, error) {
	if src == "" || dst == "" {
		return nil, fmt.Errorf("%s %q to %q: %w", op, src, dst, store.ErrInvalidPath)
	}
	if store.IsWithin(dst, src) {
		return nil, fmt.Errorf("%s %s into itself (%s): %w", op, src, dst, store.ErrInvalidPath)
	}

	fi, err := s.stat(src)
	if err != nil {
		return nil, mapError(op, src, err)
	}
	if fi == nil {
		return nil, fmt.Errorf("%s %s: %w", op, src, store.ErrNotFound)
	}

	existing, err := s.stat(dst)
	if err != nil {
		return nil, mapError(op, dst, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s %s: %w", op, dst, store.ErrExists)
	}
	if err := s.requireParentDir(op, dst); err != nil {
		return nil, err
	}
	return fi, nil
}

func (s *Store) copyTree(ctx context.Context, src, dst string, fi os.FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !fi.IsDir() {
		return s.copyFile(src, dst)
	}

	if err := s.fs.Mkdir(abs(dst), s.dirMode); err != nil {
		return mapError("copy", dst, err)
	}
	entries, err := afero.ReadDir(s.fs, abs(src))
	if err != nil {
		return mapError("copy", src, err)
	}
	for _, e := range entries {
		if err := s.copyTree(ctx, store.Join(src, e.Name()), store.Join(dst, e.Name()), e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) copyFile(src, dst string) error {
	in, err := s.fs.Open(abs(src))
	if err != nil {
		return mapError("copy", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := s.fs.OpenFile(abs(dst), os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
	if err != nil {
		return mapError("copy", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return mapError("copy", dst, err)
	}
	return mapError("copy", dst, out.Close())
}
