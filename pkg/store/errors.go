package store

import "errors"

// ============================================================================
// Standard Store Errors
// ============================================================================

// Every backend maps its native failures onto these sentinels so callers can
// branch with errors.Is regardless of the storage in use:
//
//	info, err := s.Stat(ctx, path)
//	if errors.Is(err, store.ErrNotFound) {
//	    ...
//	}
//
// Implementations wrap them with the operation and path:
//
//	return fmt.Errorf("mkdir %s: %w", path, store.ErrExists)

var (
	// ErrNotFound indicates no entry exists at the requested path.
	ErrNotFound = errors.New("entry not found")

	// ErrExists indicates an entry already exists where one was to be created.
	//
	// Returned by Mkdir, Copy and Move destinations, and ModeCreateNew opens.
	ErrExists = errors.New("entry already exists")

	// ErrNotEmpty indicates a non-recursive removal of a directory with
	// children.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrNotDir indicates a directory operation on a file, or a file in the
	// middle of a path.
	ErrNotDir = errors.New("not a directory")

	// ErrIsDir indicates a file operation on a directory.
	ErrIsDir = errors.New("is a directory")

	// ErrReadOnly indicates a mutating operation on a read-only store.
	ErrReadOnly = errors.New("store is read-only")

	// ErrInvalidPath indicates a path that cannot be normalized, such as one
	// escaping the root with "..".
	ErrInvalidPath = errors.New("invalid path")

	// ErrClosed indicates use of a file after Close.
	ErrClosed = errors.New("file already closed")

	// ErrNotReadable indicates a read from a file opened write-only.
	ErrNotReadable = errors.New("file not opened for reading")

	// ErrNotWritable indicates a write to a file opened read-only.
	ErrNotWritable = errors.New("file not opened for writing")
)
