package store

import (
	"context"
	"io"
	"time"
)

// ============================================================================
// Store Interface
// ============================================================================

// Store is the capability set every storage backend provides to the dual-store
// filesystem.
//
// A Store is a hierarchical namespace of files and directories addressed by
// slash-separated Entry Paths relative to the store root. The same interface
// backs both halves of a tulip filesystem:
//   - the content store, holding the bytes and directories users create
//   - the metadata store, holding one sidecar descriptor per content entry
//
// The dual-store layer depends only on this interface, so any pairing of
// backends (local disk, memory, S3, badger, archive) is valid as long as the
// content store is writable.
//
// Path Handling:
// Implementations receive paths already normalized by CleanPath. The root is
// the empty string. Implementations must not interpret a leading slash.
//
// Error Handling:
// Native backend errors are mapped onto the sentinels in errors.go and
// wrapped with the operation and path:
//
//	return fmt.Errorf("remove %s: %w", path, store.ErrNotEmpty)
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// Concurrent mutation of the same path is last-writer-wins.
type Store interface {
	// ========================================================================
	// File Access
	// ========================================================================

	// Open opens the file at path with the given mode.
	//
	// Mutating modes (ModeWrite, ModeAppend, ModeUpdate, ModeCreateNew) require
	// the parent directory to exist. The caller must Close the returned file;
	// buffered backends only publish the data on Close or Sync.
	//
	// Returns:
	//   - ErrNotFound if the file (or, for create modes, its parent) is missing
	//   - ErrIsDir if path is a directory
	//   - ErrExists for ModeCreateNew on an existing file
	//   - ErrReadOnly for mutating modes on a read-only store
	Open(ctx context.Context, path string, mode OpenMode) (File, error)

	// ReadFile returns the full content of the file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile creates or truncates the file at path and writes data.
	// The parent directory must exist.
	WriteFile(ctx context.Context, path string, data []byte) error

	// ========================================================================
	// Inspection
	// ========================================================================

	// Exists reports whether an entry (file or directory) exists at path.
	// The root always exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns information about the entry at path.
	Stat(ctx context.Context, path string) (*Info, error)

	// ReadDir lists the direct children of the directory at path, sorted by
	// name.
	//
	// Returns ErrNotFound if path does not exist and ErrNotDir if it is a file.
	ReadDir(ctx context.Context, path string) ([]Info, error)

	// Checksum returns a backend-specific fingerprint of the file content.
	//
	// The value is stable for identical content within one backend but is not
	// comparable across backends (local stores hash with SHA-256, S3 returns
	// the ETag).
	Checksum(ctx context.Context, path string) (string, error)

	// ========================================================================
	// Directories
	// ========================================================================

	// Mkdir creates a single directory. The parent must exist.
	//
	// Returns ErrExists if an entry already exists at path.
	Mkdir(ctx context.Context, path string) error

	// MkdirAll creates path and any missing parents. Existing directories are
	// tolerated; an existing file anywhere along path yields ErrNotDir.
	MkdirAll(ctx context.Context, path string) error

	// ========================================================================
	// Removal
	// ========================================================================

	// Remove deletes a file or an empty directory.
	//
	// Returns ErrNotFound if nothing exists at path and ErrNotEmpty for a
	// directory with children.
	Remove(ctx context.Context, path string) error

	// RemoveAll deletes path and everything below it.
	//
	// Returns ErrNotFound if nothing exists at path.
	RemoveAll(ctx context.Context, path string) error

	// ========================================================================
	// Relocation
	// ========================================================================

	// Copy duplicates the file or directory tree at src to dst.
	//
	// dst must not exist and its parent must exist.
	Copy(ctx context.Context, src, dst string) error

	// Move relocates the file or directory tree at src to dst.
	//
	// dst must not exist and its parent must exist.
	Move(ctx context.Context, src, dst string) error
}

// File is an open file handle returned by Store.Open.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Name returns the Entry Path the file was opened with.
	Name() string

	// Sync flushes buffered writes to the backend.
	Sync() error
}

// Closer is implemented by stores that hold resources (database handles,
// network clients) which must be released.
type Closer interface {
	Close() error
}

// Info describes a single store entry.
type Info struct {
	// Name is the final path component ("" for the root).
	Name string

	// Path is the full Entry Path.
	Path string

	// Size is the content length in bytes (0 for directories).
	Size int64

	// IsDir reports whether the entry is a directory.
	IsDir bool

	// ModTime is the last modification time, zero when the backend does not
	// track it (implicit S3 directories).
	ModTime time.Time
}
