package store

import (
	"fmt"
	"path"
	"strings"
)

// CleanPath normalizes a caller supplied path into an Entry Path.
//
// Leading and trailing slashes are stripped, "." and duplicate separators are
// collapsed, and "/" maps to the root (""). Paths that climb above the root
// are rejected with ErrInvalidPath.
func CleanPath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
	}

	cleaned := path.Clean("/" + p)
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			// path.Clean would silently clamp "/../x" to "/x".
			return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
		}
	}

	return strings.TrimPrefix(cleaned, "/"), nil
}

// Join joins path elements into an Entry Path.
func Join(elem ...string) string {
	return strings.TrimPrefix(path.Join(append([]string{"/"}, elem...)...), "/")
}

// Base returns the last component of p ("" for the root).
func Base(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Dir returns the parent of p ("" for top-level entries and the root).
func Dir(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// Ancestors returns every prefix of p, shortest first, p included.
//
//	Ancestors("a/b/c") // ["a", "a/b", "a/b/c"]
func Ancestors(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], "/")
	}
	return out
}

// IsWithin reports whether p equals root or lies below it.
func IsWithin(p, root string) bool {
	if root == "" {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}

// Rebase maps p from below oldRoot to the same position below newRoot.
func Rebase(p, oldRoot, newRoot string) string {
	if p == oldRoot {
		return newRoot
	}
	return Join(newRoot, strings.TrimPrefix(p, oldRoot+"/"))
}
