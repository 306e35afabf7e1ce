package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
	storetest "github.com/marmos91/tulipfs/pkg/store/testing"
)

func TestFSStore(t *testing.T) {
	suite := &storetest.StoreTestSuite{
		NewStore: func(t *testing.T) store.Store {
			s, err := New(context.Background(), Config{Path: t.TempDir()})
			require.NoError(t, err)
			return s
		},
	}
	suite.Run(t)
}

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")

	s, err := New(context.Background(), Config{Path: root})
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())

	fi, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestNew_MapsEntriesOntoDisk(t *testing.T) {
	root := t.TempDir()
	s, err := New(context.Background(), Config{Path: root})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.MkdirAll(ctx, "a/b"))
	require.NoError(t, s.WriteFile(ctx, "a/b/c.txt", []byte("on disk")))

	data, err := os.ReadFile(filepath.Join(root, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(data))
}

func TestNew_ReadOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), []byte("x"), 0644))

	s, err := New(context.Background(), Config{Path: root, ReadOnly: true})
	require.NoError(t, err)

	ctx := context.Background()
	data, err := s.ReadFile(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	assert.ErrorIs(t, s.WriteFile(ctx, "g", []byte("y")), store.ErrReadOnly)
	assert.ErrorIs(t, s.Remove(ctx, "f"), store.ErrReadOnly)
	_, err = s.Open(ctx, "f", store.ModeAppend)
	assert.ErrorIs(t, err, store.ErrReadOnly)
}

func TestNew_ReadOnlyMissingRoot(t *testing.T) {
	_, err := New(context.Background(), Config{Path: filepath.Join(t.TempDir(), "missing"), ReadOnly: true})
	assert.Error(t, err)
}

func TestNew_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, Config{Path: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}
