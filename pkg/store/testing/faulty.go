package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/marmos91/tulipfs/pkg/store"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault")

// Op names a store.Store method for fault injection.
type Op string

const (
	OpOpen      Op = "open"
	OpReadFile  Op = "readfile"
	OpWriteFile Op = "writefile"
	OpExists    Op = "exists"
	OpStat      Op = "stat"
	OpMkdir     Op = "mkdir"
	OpMkdirAll  Op = "mkdirall"
	OpReadDir   Op = "readdir"
	OpRemove    Op = "remove"
	OpRemoveAll Op = "removeall"
	OpCopy      Op = "copy"
	OpMove      Op = "move"
	OpChecksum  Op = "checksum"

	// OpClose targets Close on files returned by Open.
	OpClose Op = "close"
)

type fault struct {
	op        Op
	match     func(path string) bool
	err       error
	remaining int // 0 means unlimited
}

// FaultyStore wraps a store.Store and fails selected calls on demand. It is
// used to drive the compensation paths of the dual-store filesystem.
//
// Calls that are not failed are forwarded unchanged; every call is counted
// whether or not it fails. For Copy and Move the source path is matched.
type FaultyStore struct {
	store.Store

	mu     sync.Mutex
	faults []*fault
	calls  map[Op][]string
}

// NewFaultyStore wraps s with no faults configured.
func NewFaultyStore(s store.Store) *FaultyStore {
	return &FaultyStore{
		Store: s,
		calls: make(map[Op][]string),
	}
}

// Fail makes every call of op on path return err (ErrInjected when nil).
func (f *FaultyStore) Fail(op Op, path string, err error) {
	f.add(op, func(p string) bool { return p == path }, err, 0)
}

// FailOnce fails only the next matching call.
func (f *FaultyStore) FailOnce(op Op, path string, err error) {
	f.add(op, func(p string) bool { return p == path }, err, 1)
}

// FailMatching fails every call of op whose path satisfies match.
func (f *FaultyStore) FailMatching(op Op, match func(path string) bool, err error) {
	f.add(op, match, err, 0)
}

// FailAll fails every call of op.
func (f *FaultyStore) FailAll(op Op, err error) {
	f.add(op, func(string) bool { return true }, err, 0)
}

// Reset clears faults and call counters.
func (f *FaultyStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = nil
	f.calls = make(map[Op][]string)
}

// Calls returns the paths op was invoked with, in order.
func (f *FaultyStore) Calls(op Op) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls[op]...)
}

func (f *FaultyStore) add(op Op, match func(string) bool, err error, remaining int) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, &fault{op: op, match: match, err: err, remaining: remaining})
}

// check records the call and returns the injected error, if any.
func (f *FaultyStore) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op] = append(f.calls[op], path)
	for i, flt := range f.faults {
		if flt.op != op || !flt.match(path) {
			continue
		}
		if flt.remaining > 0 {
			flt.remaining--
			if flt.remaining == 0 {
				f.faults = append(f.faults[:i], f.faults[i+1:]...)
			}
		}
		return flt.err
	}
	return nil
}

func (f *FaultyStore) Open(ctx context.Context, path string, mode store.OpenMode) (store.File, error) {
	if err := f.check(OpOpen, path); err != nil {
		return nil, err
	}
	file, err := f.Store.Open(ctx, path, mode)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, owner: f, path: path}, nil
}

func (f *FaultyStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := f.check(OpReadFile, path); err != nil {
		return nil, err
	}
	return f.Store.ReadFile(ctx, path)
}

func (f *FaultyStore) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := f.check(OpWriteFile, path); err != nil {
		return err
	}
	return f.Store.WriteFile(ctx, path, data)
}

func (f *FaultyStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := f.check(OpExists, path); err != nil {
		return false, err
	}
	return f.Store.Exists(ctx, path)
}

func (f *FaultyStore) Stat(ctx context.Context, path string) (*store.Info, error) {
	if err := f.check(OpStat, path); err != nil {
		return nil, err
	}
	return f.Store.Stat(ctx, path)
}

func (f *FaultyStore) Mkdir(ctx context.Context, path string) error {
	if err := f.check(OpMkdir, path); err != nil {
		return err
	}
	return f.Store.Mkdir(ctx, path)
}

func (f *FaultyStore) MkdirAll(ctx context.Context, path string) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}
	return f.Store.MkdirAll(ctx, path)
}

func (f *FaultyStore) ReadDir(ctx context.Context, path string) ([]store.Info, error) {
	if err := f.check(OpReadDir, path); err != nil {
		return nil, err
	}
	return f.Store.ReadDir(ctx, path)
}

func (f *FaultyStore) Remove(ctx context.Context, path string) error {
	if err := f.check(OpRemove, path); err != nil {
		return err
	}
	return f.Store.Remove(ctx, path)
}

func (f *FaultyStore) RemoveAll(ctx context.Context, path string) error {
	if err := f.check(OpRemoveAll, path); err != nil {
		return err
	}
	return f.Store.RemoveAll(ctx, path)
}

func (f *FaultyStore) Copy(ctx context.Context, src, dst string) error {
	if err := f.check(OpCopy, src); err != nil {
		return err
	}
	return f.Store.Copy(ctx, src, dst)
}

func (f *FaultyStore) Move(ctx context.Context, src, dst string) error {
	if err := f.check(OpMove, src); err != nil {
		return err
	}
	return f.Store.Move(ctx, src, dst)
}

func (f *FaultyStore) Checksum(ctx context.Context, path string) (string, error) {
	if err := f.check(OpChecksum, path); err != nil {
		return "", err
	}
	return f.Store.Checksum(ctx, path)
}

type faultyFile struct {
	store.File
	owner *FaultyStore
	path  string
}

// Close closes the wrapped file first so the data is still published when
// the injected error fires.
func (f *faultyFile) Close() error {
	closeErr := f.File.Close()
	if err := f.owner.check(OpClose, f.path); err != nil {
		return err
	}
	return closeErr
}

var _ store.Store = (*FaultyStore)(nil)
