package dualfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/memory"
	storetest "github.com/marmos91/tulipfs/pkg/store/testing"
)

var epoch = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

type testEnv struct {
	fs      *FS
	content *storetest.FaultyStore
	meta    *storetest.FaultyStore
	metrics *recordingMetrics
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		content: storetest.NewFaultyStore(memory.New()),
		meta:    storetest.NewFaultyStore(memory.New()),
		metrics: &recordingMetrics{},
		now:     epoch,
	}

	gen, err := metadata.NewGenerator(metadata.WithClock(metadata.ClockFunc(func() time.Time {
		return env.now
	})))
	require.NoError(t, err)

	env.fs = New(env.content, env.meta, WithGenerator(gen), WithMetrics(env.metrics))
	return env
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func (e *testEnv) descriptor(t *testing.T, p string) *metadata.Descriptor {
	t.Helper()
	d, err := e.fs.ReadMetadata(context.Background(), p)
	require.NoError(t, err, "metadata of %q", p)
	return d
}

func (e *testEnv) requireContent(t *testing.T, p string, want bool) {
	t.Helper()
	ok, err := e.content.Store.Exists(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, want, ok, "content %q exists", p)
}

func (e *testEnv) requireMeta(t *testing.T, p string, want bool) {
	t.Helper()
	ok, err := e.meta.Store.Exists(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, want, ok, "metadata %q exists", p)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type recordingMetrics struct {
	mu            sync.Mutex
	operations    map[string]int
	failures      map[string]int
	compensations map[string][]bool
	mirrorFailure map[string]int
}

func (m *recordingMetrics) ObserveOperation(op string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.operations == nil {
		m.operations = map[string]int{}
		m.failures = map[string]int{}
	}
	m.operations[op]++
	if err != nil {
		m.failures[op]++
	}
}

func (m *recordingMetrics) RecordCompensation(op string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.compensations == nil {
		m.compensations = map[string][]bool{}
	}
	m.compensations[op] = append(m.compensations[op], ok)
}

func (m *recordingMetrics) RecordMirrorFailure(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mirrorFailure == nil {
		m.mirrorFailure = map[string]int{}
	}
	m.mirrorFailure[op]++
}

// ============================================================================
// Construction
// ============================================================================

func TestNewDefaults(t *testing.T) {
	fs := New(memory.New(), memory.New())

	assert.Equal(t, metadata.JSONFilename, fs.Codec().Filename())
	assert.Equal(t, []string{metadata.DigestSHA256}, fs.Generator().Digests())
	assert.Equal(t, "a/b/tulip.json", fs.SidecarPath("a/b"))
}

func TestWithCodec(t *testing.T) {
	ctx := context.Background()
	meta := memory.New()
	fs := New(memory.New(), meta, WithCodec(metadata.YAMLCodec{}))

	require.NoError(t, fs.MakeDir(ctx, "a"))

	ok, err := meta.Exists(ctx, "a/tulip.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}

// ============================================================================
// MakeDir
// ============================================================================

func TestMakeDir(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesDirectoryAndDescriptor", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "/images"))

		env.requireContent(t, "images", true)
		d := env.descriptor(t, "images")
		assert.Equal(t, metadata.KindObject, d.Type)
		assert.Equal(t, "images", d.Path)
		assert.Equal(t, "images", d.Name)
		assert.Equal(t, epoch, d.CreatedAt)
	})

	t.Run("ExistingDirectory", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		assert.ErrorIs(t, env.fs.MakeDir(ctx, "a"), store.ErrExists)
	})

	t.Run("ExistingFile", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "a", []byte("x")))

		assert.ErrorIs(t, env.fs.MakeDir(ctx, "a"), store.ErrNotDir)
		assert.Empty(t, env.content.Calls(storetest.OpMkdir))
	})

	t.Run("MissingParent", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.fs.MakeDir(ctx, "a/b"), store.ErrNotFound)
		env.requireMeta(t, "a", false)
	})

	t.Run("ReservedName", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.fs.MakeDir(ctx, "tulip.json"), ErrReservedName)
	})

	t.Run("RollbackOnMetadataFailure", func(t *testing.T) {
		env := newTestEnv(t)
		env.meta.Fail(storetest.OpWriteFile, "a/tulip.json", nil)

		err := env.fs.MakeDir(ctx, "a")
		require.ErrorIs(t, err, storetest.ErrInjected)

		env.requireContent(t, "a", false)
		env.requireMeta(t, "a", false)
		assert.Equal(t, []bool{true}, env.metrics.compensations["mkdir"])
		assert.Equal(t, 1, env.metrics.failures["mkdir"])
	})

	t.Run("FailedRollbackKeepsOriginalError", func(t *testing.T) {
		env := newTestEnv(t)
		env.meta.Fail(storetest.OpWriteFile, "a/tulip.json", nil)
		env.content.Fail(storetest.OpRemove, "a", assert.AnError)

		err := env.fs.MakeDir(ctx, "a")
		require.ErrorIs(t, err, storetest.ErrInjected)
		assert.NotErrorIs(t, err, assert.AnError)
		assert.Equal(t, []bool{false}, env.metrics.compensations["mkdir"])
	})
}

// ============================================================================
// MakeDirs
// ============================================================================

func TestMakeDirs(t *testing.T) {
	ctx := context.Background()

	t.Run("NestedDirectories", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDirs(ctx, "images/dogs"))

		for _, p := range []string{"images", "images/dogs"} {
			env.requireContent(t, p, true)
			env.requireMeta(t, p+"/tulip.json", true)
			assert.Equal(t, metadata.KindObject, env.descriptor(t, p).Type)
		}
		assert.Equal(t, []string{"images/tulip.json", "images/dogs/tulip.json"},
			env.meta.Calls(storetest.OpWriteFile))
	})

	t.Run("KeepsExistingDescriptors", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		_, err := env.fs.UpdateMetadata(ctx, "a", map[string]any{"owner": "alice"})
		require.NoError(t, err)

		require.NoError(t, env.fs.MakeDirs(ctx, "a/b/c"))
		assert.Equal(t, "alice", env.descriptor(t, "a").Extra["owner"])
		assert.Equal(t, "a/b/c", env.descriptor(t, "a/b/c").Path)
	})

	t.Run("Idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDirs(ctx, "a/b"))
		require.NoError(t, env.fs.MakeDirs(ctx, "a/b"))
	})

	t.Run("FileAlongPath", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "a", []byte("x")))

		assert.ErrorIs(t, env.fs.MakeDirs(ctx, "a/b"), store.ErrNotDir)
	})

	t.Run("RollbackRemovesCreatedSubtree", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "keep"))
		env.meta.Fail(storetest.OpWriteFile, "keep/x/y/tulip.json", nil)

		err := env.fs.MakeDirs(ctx, "keep/x/y")
		require.ErrorIs(t, err, storetest.ErrInjected)

		env.requireContent(t, "keep", true)
		env.requireMeta(t, "keep/tulip.json", true)
		env.requireContent(t, "keep/x", false)
		env.requireMeta(t, "keep/x", false)
	})

	t.Run("PartialContentFailure", func(t *testing.T) {
		content := &halfMkdirAllStore{Store: memory.New()}
		meta := memory.New()
		fsys := New(content, meta)
		require.NoError(t, fsys.MakeDir(ctx, "keep"))

		err := fsys.MakeDirs(ctx, "keep/x/y/z")
		require.ErrorIs(t, err, storetest.ErrInjected)

		ok, err := content.Exists(ctx, "keep/x")
		require.NoError(t, err)
		assert.False(t, ok, "partially created prefix must be removed")

		ok, err = content.Exists(ctx, "keep")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = meta.Exists(ctx, "keep/x")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// halfMkdirAllStore creates only the first missing level of a MkdirAll and
// then fails.
type halfMkdirAllStore struct {
	store.Store
}

func (s *halfMkdirAllStore) MkdirAll(ctx context.Context, p string) error {
	for _, prefix := range store.Ancestors(p) {
		ok, err := s.Exists(ctx, prefix)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.Mkdir(ctx, prefix); err != nil {
				return err
			}
			return storetest.ErrInjected
		}
	}
	return nil
}

// ============================================================================
// WriteFile
// ============================================================================

func TestWriteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("DescriptorFromContent", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", []byte("hi")))

		d := env.descriptor(t, "a.txt")
		assert.Equal(t, metadata.KindFile, d.Type)
		assert.Equal(t, int64(2), d.Size)
		assert.Equal(t, sha256Hex([]byte("hi")), d.Digest(metadata.DigestSHA256))
		env.requireMeta(t, "a.txt/tulip.json", true)
	})

	t.Run("RewriteRegenerates", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", []byte("hi")))
		first := env.descriptor(t, "a.txt")

		env.advance(time.Minute)
		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", []byte("hello")))
		second := env.descriptor(t, "a.txt")

		assert.Equal(t, int64(5), second.Size)
		assert.NotEqual(t, first.Digest(metadata.DigestSHA256), second.Digest(metadata.DigestSHA256))
		assert.Equal(t, epoch.Add(time.Minute), second.CreatedAt)
	})

	t.Run("SameContentSameDigest", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "one", []byte("payload")))
		require.NoError(t, env.fs.WriteFile(ctx, "two", []byte("payload")))

		assert.Equal(t,
			env.descriptor(t, "one").Digest(metadata.DigestSHA256),
			env.descriptor(t, "two").Digest(metadata.DigestSHA256))
	})

	t.Run("MissingParent", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.fs.WriteFile(ctx, "a/b.txt", nil), store.ErrNotFound)
	})

	t.Run("Root", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.fs.WriteFile(ctx, "/", nil), store.ErrIsDir)
	})

	t.Run("ReservedName", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		assert.ErrorIs(t, env.fs.WriteFile(ctx, "a/tulip.json", nil), ErrReservedName)
	})

	t.Run("RollbackOnMetadataFailure", func(t *testing.T) {
		env := newTestEnv(t)
		env.meta.Fail(storetest.OpMkdirAll, "a.txt", nil)

		err := env.fs.WriteFile(ctx, "a.txt", []byte("hi"))
		require.ErrorIs(t, err, storetest.ErrInjected)

		env.requireContent(t, "a.txt", false)
		assert.Equal(t, []string{"a.txt"}, env.content.Calls(storetest.OpRemove))
	})

	t.Run("ContentFailureTouchesNoMetadata", func(t *testing.T) {
		env := newTestEnv(t)
		env.content.Fail(storetest.OpWriteFile, "a.txt", nil)

		require.ErrorIs(t, env.fs.WriteFile(ctx, "a.txt", []byte("hi")), storetest.ErrInjected)
		assert.Empty(t, env.meta.Calls(storetest.OpWriteFile))
		assert.Empty(t, env.metrics.compensations)
	})
}
