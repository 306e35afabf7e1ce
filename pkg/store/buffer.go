package store

import (
	"fmt"
	"io"
	"sync"
)

// BufferFile is an in-memory File for backends without native file handles
// (S3 objects, badger values). Reads and writes operate on a private buffer;
// mutating handles publish the buffer through the commit callback on Sync
// and Close.
type BufferFile struct {
	mu     sync.Mutex
	name   string
	mode   OpenMode
	buf    []byte
	off    int64
	dirty  bool
	closed bool
	commit func([]byte) error
}

// NewBufferFile returns a file over a copy of initial.
//
// Parameters:
//   - name: Entry Path reported by Name
//   - initial: current content, nil when the file does not exist yet
//   - mode: open mode; ModeAppend positions writes at the end
//   - commit: persists the full buffer, may be nil for read-only handles
func NewBufferFile(name string, initial []byte, mode OpenMode, commit func([]byte) error) *BufferFile {
	f := &BufferFile{
		name:   name,
		mode:   mode,
		commit: commit,
	}
	if mode&OpenTruncate == 0 {
		f.buf = append([]byte(nil), initial...)
	}
	// A freshly created or truncated file must be published even when
	// nothing is written to it.
	f.dirty = mode.Mutates() && (mode&OpenTruncate != 0 || mode&OpenExclusive != 0 || initial == nil)
	return f
}

func (f *BufferFile) Name() string { return f.name }

func (f *BufferFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fmt.Errorf("read %s: %w", f.name, ErrClosed)
	}
	if !f.mode.Readable() {
		return 0, fmt.Errorf("read %s: %w", f.name, ErrNotReadable)
	}
	if f.off >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.off:])
	f.off += int64(n)
	return n, nil
}

func (f *BufferFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fmt.Errorf("write %s: %w", f.name, ErrClosed)
	}
	if !f.mode.Mutates() {
		return 0, fmt.Errorf("write %s: %w", f.name, ErrNotWritable)
	}

	if f.mode&OpenAppend != 0 {
		f.off = int64(len(f.buf))
	}
	end := f.off + int64(len(p))
	if end > int64(len(f.buf)) {
		grown := make([]byte, end)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.off:], p)
	f.off = end
	f.dirty = true
	return len(p), nil
}

func (f *BufferFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fmt.Errorf("seek %s: %w", f.name, ErrClosed)
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = int64(len(f.buf)) + offset
	default:
		return 0, fmt.Errorf("seek %s: invalid whence %d", f.name, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek %s: negative position", f.name)
	}
	f.off = abs
	return abs, nil
}

// Sync publishes pending writes without closing the file.
func (f *BufferFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("sync %s: %w", f.name, ErrClosed)
	}
	return f.flush()
}

// Close publishes pending writes and releases the buffer.
func (f *BufferFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("close %s: %w", f.name, ErrClosed)
	}
	f.closed = true
	err := f.flush()
	f.buf = nil
	return err
}

func (f *BufferFile) flush() error {
	if !f.dirty || f.commit == nil {
		return nil
	}
	if err := f.commit(f.buf); err != nil {
		return err
	}
	f.dirty = false
	return nil
}
