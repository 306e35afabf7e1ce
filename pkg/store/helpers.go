package store

import (
	"context"
	"errors"
	"io/fs"
)

// SkipDir can be returned by a WalkFunc to skip the directory it was called
// with.
var SkipDir = fs.SkipDir

// WalkFunc is called for every entry visited by Walk. When err is non-nil the
// entry could not be inspected and info is nil.
type WalkFunc func(path string, info *Info, err error) error

// IsFile reports whether a file exists at path. A missing entry is not an
// error.
func IsFile(ctx context.Context, s Store, path string) (bool, error) {
	info, err := s.Stat(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir, nil
}

// IsDir reports whether a directory exists at path. A missing entry is not an
// error.
func IsDir(ctx context.Context, s Store, path string) (bool, error) {
	info, err := s.Stat(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir, nil
}

// Walk visits root and every entry below it in lexical order, parents before
// children.
func Walk(ctx context.Context, s Store, root string, fn WalkFunc) error {
	info, err := s.Stat(ctx, root)
	if err != nil {
		return fn(root, nil, err)
	}
	err = walk(ctx, s, info, fn)
	if errors.Is(err, SkipDir) {
		return nil
	}
	return err
}

func walk(ctx context.Context, s Store, info *Info, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := fn(info.Path, info, nil); err != nil {
		return err
	}
	if !info.IsDir {
		return nil
	}

	children, err := s.ReadDir(ctx, info.Path)
	if err != nil {
		return fn(info.Path, nil, err)
	}

	for i := range children {
		err := walk(ctx, s, &children[i], fn)
		if errors.Is(err, SkipDir) {
			if children[i].IsDir {
				continue
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}
