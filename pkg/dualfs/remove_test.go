package dualfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
	storetest "github.com/marmos91/tulipfs/pkg/store/testing"
)

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("FileAndDescriptor", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", []byte("hi")))
		require.NoError(t, env.fs.Remove(ctx, "a.txt"))

		env.requireContent(t, "a.txt", false)
		env.requireMeta(t, "a.txt/tulip.json", false)

		_, err := env.fs.ReadFile(ctx, "a.txt")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = env.fs.ReadMetadata(ctx, "a.txt")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("MetadataRemovedBeforeContent", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", []byte("hi")))
		env.meta.Fail(storetest.OpRemoveAll, "a.txt", nil)

		require.ErrorIs(t, env.fs.Remove(ctx, "a.txt"), storetest.ErrInjected)

		env.requireContent(t, "a.txt", true)
		env.requireMeta(t, "a.txt/tulip.json", true)
		assert.Empty(t, env.content.Calls(storetest.OpRemove))
	})

	t.Run("NoMetadataStillRemovesContent", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.content.Store.WriteFile(ctx, "bare", []byte("x")))

		require.NoError(t, env.fs.Remove(ctx, "bare"))
		env.requireContent(t, "bare", false)
	})

	t.Run("NoMetadataAndMetadataFailure", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.content.Store.WriteFile(ctx, "bare", []byte("x")))
		env.meta.Fail(storetest.OpRemoveAll, "bare", nil)

		require.NoError(t, env.fs.Remove(ctx, "bare"))
		env.requireContent(t, "bare", false)
	})

	t.Run("NonEmptyDirectory", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDirs(ctx, "a/b"))

		assert.ErrorIs(t, env.fs.Remove(ctx, "a"), store.ErrNotEmpty)
		env.requireMeta(t, "a/tulip.json", true)
	})

	t.Run("Missing", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.fs.Remove(ctx, "nope"), store.ErrNotFound)
	})

	t.Run("Root", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		require.NoError(t, env.fs.RemoveAll(ctx, "a"))

		assert.ErrorIs(t, env.fs.Remove(ctx, "/"), store.ErrInvalidPath)
		assert.ErrorIs(t, env.fs.RemoveAll(ctx, ""), store.ErrInvalidPath)
	})
}

func TestRemoveDir(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyDirectory", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		require.NoError(t, env.fs.RemoveDir(ctx, "a"))

		env.requireContent(t, "a", false)
		env.requireMeta(t, "a", false)
	})

	t.Run("NotEmptyLeavesBothStores", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		require.NoError(t, env.fs.WriteFile(ctx, "a/f", []byte("x")))

		assert.ErrorIs(t, env.fs.RemoveDir(ctx, "a"), store.ErrNotEmpty)
		assert.Empty(t, env.meta.Calls(storetest.OpRemoveAll))
		env.requireMeta(t, "a/tulip.json", true)
	})

	t.Run("File", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "f", []byte("x")))
		assert.ErrorIs(t, env.fs.RemoveDir(ctx, "f"), store.ErrNotDir)
	})

	t.Run("MetadataFailureAborts", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDir(ctx, "a"))
		env.meta.Fail(storetest.OpRemoveAll, "a", nil)

		require.ErrorIs(t, env.fs.RemoveDir(ctx, "a"), storetest.ErrInjected)
		env.requireContent(t, "a", true)
	})
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("NestedTree", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDirs(ctx, "p/c/g"))
		require.NoError(t, env.fs.WriteFile(ctx, "p/c/file", []byte("x")))

		require.NoError(t, env.fs.RemoveAll(ctx, "p"))

		for _, p := range []string{"p", "p/c", "p/c/g", "p/c/file"} {
			env.requireContent(t, p, false)
			env.requireMeta(t, p+"/tulip.json", false)
		}
		env.requireMeta(t, "p", false)
	})

	t.Run("MetadataFailureAborts", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.MakeDirs(ctx, "p/c"))
		env.meta.Fail(storetest.OpRemoveAll, "p", nil)

		require.ErrorIs(t, env.fs.RemoveAll(ctx, "p"), storetest.ErrInjected)
		env.requireContent(t, "p/c", true)
		assert.Empty(t, env.content.Calls(storetest.OpRemoveAll))
	})

	t.Run("Missing", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.fs.RemoveAll(ctx, "nope"), store.ErrNotFound)
	})
}
