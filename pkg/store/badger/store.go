// Package badger implements a store.Store inside an embedded BadgerDB.
//
// This file contains the store type, its constructor, the key layout and the
// value encoding. Reads, writes and tree operations live in sibling files.
package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Key Namespace Design
// ====================
//
// Two prefixes organize the keyspace:
//
// Data Type      Prefix   Key Format                    Value
// ==========================================================================
// Entries        "e:"     e:<path>                      kind | mtime | data
// Children       "c:"     c:<parent>\x00<name>          kind
//
// Entries hold one record per file or directory. The root is implicit and
// never stored. The children index makes ReadDir a range scan over the
// direct children only; keys sort by name, so listings come out ordered.
// Subtree scans (RemoveAll, Copy, Move) use the "e:<path>/" prefix.
//
// The entry value starts with a one byte kind ('f' or 'd') followed by the
// modification time as big-endian Unix nanoseconds; file bytes follow.
const (
	entryPrefix = "e:"
	childPrefix = "c:"

	headerSize = 9
)

type kind byte

const (
	kindFile kind = 'f'
	kindDir  kind = 'd'
)

// ErrCorruptEntry indicates a stored value that cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt badger entry")

// Config holds the badger store settings.
type Config struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string `mapstructure:"path"`

	// InMemory keeps the whole database in memory (tests, scratch repos).
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`

	// SyncWrites fsyncs every commit.
	SyncWrites bool `mapstructure:"sync_writes"`
}

// Store is a store.Store persisted in BadgerDB.
//
// It suits metadata stores well: sidecars are small, numerous and benefit
// from the LSM tree's fast point lookups. It can also hold content for
// small-file workloads.
//
// Thread Safety:
// BadgerDB transactions are serializable; every single-entry mutation runs
// in one transaction. Tree operations read in one transaction and write in
// a WriteBatch, so a concurrent writer inside the same subtree may be lost.
type Store struct {
	db  *badgerdb.DB
	cfg Config
	now func() time.Time
}

// New opens (or creates) a badger store.
//
// Parameters:
//   - ctx: Context for cancellation (checked before opening the database)
//   - cfg: Store configuration
//
// Returns:
//   - *Store: Open store, must be closed by the caller
//   - error: If the database cannot be opened
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger store: path is required")
		}
		opts = badgerdb.DefaultOptions(cfg.Path)
	}

	opts = opts.WithLoggingLevel(badgerdb.WARNING)
	opts = opts.WithCompression(options.None)
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	blockCacheMB := cfg.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := cfg.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.Path, err)
	}

	return &Store{db: db, cfg: cfg, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) String() string {
	if s.cfg.InMemory {
		return "badger:memory"
	}
	return "badger:" + s.cfg.Path
}

// ============================================================================
// Keys and values
// ============================================================================

func entryKey(p string) []byte {
	return []byte(entryPrefix + p)
}

// subtreePrefix matches every entry strictly below p.
func subtreePrefix(p string) []byte {
	if p == "" {
		return []byte(entryPrefix)
	}
	return []byte(entryPrefix + p + "/")
}

func childKey(p string) []byte {
	return []byte(childPrefix + store.Dir(p) + "\x00" + store.Base(p))
}

func childrenPrefix(dir string) []byte {
	return []byte(childPrefix + dir + "\x00")
}

type entry struct {
	kind    kind
	modTime time.Time
	data    []byte
}

func encodeEntry(e entry) []byte {
	buf := make([]byte, headerSize+len(e.data))
	buf[0] = byte(e.kind)
	binary.BigEndian.PutUint64(buf[1:headerSize], uint64(e.modTime.UnixNano()))
	copy(buf[headerSize:], e.data)
	return buf
}

func decodeEntry(b []byte) (entry, error) {
	if len(b) < headerSize {
		return entry{}, ErrCorruptEntry
	}
	k := kind(b[0])
	if k != kindFile && k != kindDir {
		return entry{}, ErrCorruptEntry
	}
	return entry{
		kind:    k,
		modTime: time.Unix(0, int64(binary.BigEndian.Uint64(b[1:headerSize]))),
		data:    b[headerSize:],
	}, nil
}

// ============================================================================
// Transaction helpers
// ============================================================================

// getEntry loads p, returning nil when it does not exist. The root is
// reported as a directory.
func getEntry(txn *badgerdb.Txn, p string) (*entry, error) {
	if p == "" {
		return &entry{kind: kindDir}, nil
	}

	item, err := txn.Get(entryKey(p))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	e, err := decodeEntry(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &e, nil
}

// statItem decodes the header of item without copying the data.
func statItem(p string, item *badgerdb.Item) (*store.Info, error) {
	info := &store.Info{Name: store.Base(p), Path: p}
	err := item.Value(func(v []byte) error {
		e, err := decodeEntry(v)
		if err != nil {
			return err
		}
		info.IsDir = e.kind == kindDir
		info.ModTime = e.modTime
		if !info.IsDir {
			info.Size = int64(len(e.data))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return info, nil
}

func putEntry(txn *badgerdb.Txn, p string, e entry) error {
	if err := txn.Set(entryKey(p), encodeEntry(e)); err != nil {
		return err
	}
	return txn.Set(childKey(p), []byte{byte(e.kind)})
}

func deleteEntry(txn *badgerdb.Txn, p string) error {
	if err := txn.Delete(entryKey(p)); err != nil {
		return err
	}
	return txn.Delete(childKey(p))
}

// requireParentDir verifies that the parent of p is an existing directory.
func requireParentDir(txn *badgerdb.Txn, op, p string) error {
	parent := store.Dir(p)
	e, err := getEntry(txn, parent)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%s %s: parent %s: %w", op, p, parent, store.ErrNotFound)
	}
	if e.kind != kindDir {
		return fmt.Errorf("%s %s: parent %s: %w", op, p, parent, store.ErrNotDir)
	}
	return nil
}

// hasChildren reports whether dir has at least one child.
func hasChildren(txn *badgerdb.Txn, dir string) bool {
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := childrenPrefix(dir)
	it.Seek(prefix)
	return it.ValidForPrefix(prefix)
}

// subtreePaths returns the paths of every entry strictly below p.
func subtreePaths(txn *badgerdb.Txn, p string) []string {
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := subtreePrefix(p)
	var paths []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		paths = append(paths, string(it.Item().Key()[len(entryPrefix):]))
	}
	return paths
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Closer = (*Store)(nil)
)
