package entity

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/memory"
	storetest "github.com/marmos91/tulipfs/pkg/store/testing"
)

func newFS(t *testing.T) (*dualfs.FS, *storetest.FaultyStore) {
	t.Helper()
	meta := storetest.NewFaultyStore(memory.New())
	return dualfs.New(memory.New(), meta), meta
}

func TestObject(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveCreatesAncestors", func(t *testing.T) {
		fs, _ := newFS(t)
		o, err := NewObject(fs, "/horse/details", map[string]any{"pickles": true})
		require.NoError(t, err)

		assert.Equal(t, "horse/details", o.Path())
		assert.Equal(t, "horse/details/tulip.json", o.MetadataPath())
		assert.Equal(t, metadata.KindObject, o.Kind())

		require.NoError(t, o.Save(ctx))

		d, err := o.Metadata(ctx)
		require.NoError(t, err)
		assert.Equal(t, metadata.KindObject, d.Type)
		assert.Equal(t, true, d.Extra["pickles"])

		parent, err := fs.ReadMetadata(ctx, "horse")
		require.NoError(t, err)
		assert.Empty(t, parent.Extra)
	})

	t.Run("GenerateMetadataWritesNothing", func(t *testing.T) {
		fs, meta := newFS(t)
		o, err := NewObject(fs, "a", nil)
		require.NoError(t, err)

		d, err := o.GenerateMetadata()
		require.NoError(t, err)
		assert.Equal(t, "a", d.Path)
		assert.Empty(t, meta.Calls(storetest.OpWriteFile))
	})

	t.Run("MetadataIsNotCached", func(t *testing.T) {
		fs, _ := newFS(t)
		o, err := NewObject(fs, "a", nil)
		require.NoError(t, err)
		require.NoError(t, o.Save(ctx))

		_, err = fs.UpdateMetadata(ctx, "a", map[string]any{"k": "v"})
		require.NoError(t, err)

		d, err := o.Metadata(ctx)
		require.NoError(t, err)
		assert.Equal(t, "v", d.Extra["k"])
	})

	t.Run("Delete", func(t *testing.T) {
		fs, _ := newFS(t)
		o, err := NewObject(fs, "p/c/g", nil)
		require.NoError(t, err)
		require.NoError(t, o.Save(ctx))

		top, err := NewObject(fs, "p", nil)
		require.NoError(t, err)
		assert.ErrorIs(t, top.Delete(ctx, false), store.ErrNotEmpty)
		require.NoError(t, top.Delete(ctx, true))

		exists, err := fs.Exists(ctx, "p")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Children", func(t *testing.T) {
		fs, _ := newFS(t)
		require.NoError(t, fs.MakeDirs(ctx, "a/sub"))
		require.NoError(t, fs.WriteFile(ctx, "a/f", []byte("x")))

		o, err := NewObject(fs, "a", nil)
		require.NoError(t, err)
		children, err := o.Children(ctx)
		require.NoError(t, err)

		require.Len(t, children, 2)
		assert.IsType(t, &File{}, children[0])
		assert.Equal(t, "a/f", children[0].Path())
		assert.IsType(t, &Object{}, children[1])
	})

	t.Run("RootRejected", func(t *testing.T) {
		fs, _ := newFS(t)
		_, err := NewObject(fs, "/", nil)
		assert.ErrorIs(t, err, store.ErrInvalidPath)
	})
}

func TestFile(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveWritesContentAndMixins", func(t *testing.T) {
		fs, _ := newFS(t)
		f, err := NewFile(fs, "hi.txt", []byte("what the deuce"), map[string]any{"tennis": "fun"})
		require.NoError(t, err)
		require.NoError(t, f.Save(ctx))

		content, err := f.Content(ctx)
		require.NoError(t, err)
		assert.Equal(t, "what the deuce", string(content))

		d, err := f.Metadata(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(14), d.Size)
		assert.Equal(t, "fun", d.Extra["tennis"])
	})

	t.Run("MixinFailureKeepsFile", func(t *testing.T) {
		fs, meta := newFS(t)
		f, err := NewFile(fs, "f", []byte("x"), map[string]any{"k": 1})
		require.NoError(t, err)

		meta.Fail(storetest.OpReadFile, "f/tulip.json", nil)
		require.ErrorIs(t, f.Save(ctx), storetest.ErrInjected)

		exists, err := fs.Exists(ctx, "f")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("PlaceholderMetadata", func(t *testing.T) {
		fs, _ := newFS(t)
		f, err := NewFile(fs, "pending", nil, nil)
		require.NoError(t, err)

		d, err := f.GenerateMetadata()
		require.NoError(t, err)
		assert.Equal(t, int64(0), d.Size)
		assert.Nil(t, d.Digests[metadata.DigestSHA256])
	})

	t.Run("OpenStreams", func(t *testing.T) {
		fs, _ := newFS(t)
		f, err := NewFile(fs, "log", nil, nil)
		require.NoError(t, err)
		require.NoError(t, f.Save(ctx))

		w, err := f.Open(ctx, store.ModeAppend)
		require.NoError(t, err)
		_, err = io.WriteString(w, "line\n")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		d, err := f.Metadata(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), d.Size)
	})

	t.Run("Delete", func(t *testing.T) {
		fs, _ := newFS(t)
		f, err := NewFile(fs, "a.txt", []byte("hi"), nil)
		require.NoError(t, err)
		require.NoError(t, f.Save(ctx))
		require.NoError(t, f.Delete(ctx))

		_, err = f.Content(ctx)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.Metadata(ctx)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFS(t)
	require.NoError(t, fs.MakeDir(ctx, "dir"))
	require.NoError(t, fs.WriteFile(ctx, "dir/f", []byte("x")))

	e, err := Load(ctx, fs, "dir")
	require.NoError(t, err)
	assert.IsType(t, &Object{}, e)

	e, err = Load(ctx, fs, "dir/f")
	require.NoError(t, err)
	assert.IsType(t, &File{}, e)
	assert.Equal(t, metadata.KindFile, e.Kind())

	_, err = Load(ctx, fs, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
