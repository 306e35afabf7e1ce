package dualfs

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/marmos91/tulipfs/pkg/store"
)

// The read-side operations below delegate to the content store and never
// touch the metadata store. Backend errors are returned unchanged.

func (f *FS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return nil, err
	}
	return f.content.ReadFile(ctx, p)
}

func (f *FS) Exists(ctx context.Context, p string) (bool, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return false, err
	}
	return f.content.Exists(ctx, p)
}

func (f *FS) Stat(ctx context.Context, p string) (*store.Info, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return nil, err
	}
	return f.content.Stat(ctx, p)
}

func (f *FS) IsFile(ctx context.Context, p string) (bool, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return false, err
	}
	return store.IsFile(ctx, f.content, p)
}

func (f *FS) IsDir(ctx context.Context, p string) (bool, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return false, err
	}
	return store.IsDir(ctx, f.content, p)
}

// ReadDir lists the children of the directory at p, sorted by name.
func (f *FS) ReadDir(ctx context.Context, p string) ([]store.Info, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return nil, err
	}
	return f.content.ReadDir(ctx, p)
}

// ListDir returns the names of the children of the directory at p.
func (f *FS) ListDir(ctx context.Context, p string) ([]string, error) {
	entries, err := f.ReadDir(ctx, p)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// Size returns the content length of the entry at p.
func (f *FS) Size(ctx context.Context, p string) (int64, error) {
	info, err := f.Stat(ctx, p)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (f *FS) Checksum(ctx context.Context, p string) (string, error) {
	p, err := store.CleanPath(p)
	if err != nil {
		return "", err
	}
	return f.content.Checksum(ctx, p)
}

// Walk visits the content entry at root and everything below it.
func (f *FS) Walk(ctx context.Context, root string, fn store.WalkFunc) error {
	root, err := store.CleanPath(root)
	if err != nil {
		return err
	}
	return store.Walk(ctx, f.content, root, fn)
}

// Glob returns the content entries whose paths match pattern, in walk
// order. Patterns use path.Match syntax against whole entry paths, so a
// wildcard never crosses a slash: "images/*.png" matches
// "images/a.png" but not "images/dogs/b.png".
func (f *FS) Glob(ctx context.Context, pattern string) ([]string, error) {
	pattern = strings.Trim(pattern, "/")
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	depth := strings.Count(pattern, "/") + 1

	var matches []string
	err := store.Walk(ctx, f.content, "", func(p string, info *store.Info, err error) error {
		if err != nil {
			return err
		}
		if p == "" {
			return nil
		}
		if ok, _ := path.Match(pattern, p); ok {
			matches = append(matches, p)
		}
		if info.IsDir && strings.Count(p, "/")+1 >= depth {
			return store.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
