package dualfs

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
	storetest "github.com/marmos91/tulipfs/pkg/store/testing"
)

func TestOpenFile(t *testing.T) {
	ctx := context.Background()

	t.Run("WriteGeneratesDescriptorOnClose", func(t *testing.T) {
		env := newTestEnv(t)
		f, err := env.fs.OpenFile(ctx, "log.txt", store.ModeWrite)
		require.NoError(t, err)
		require.IsType(t, &Handle{}, f)
		assert.Equal(t, "log.txt", f.Name())
		assert.Equal(t, "log.txt", f.(*Handle).Unwrap().Name())

		_, err = f.Write([]byte("hello "))
		require.NoError(t, err)
		_, err = f.(*Handle).WriteString("world")
		require.NoError(t, err)

		env.requireMeta(t, "log.txt", false)
		require.NoError(t, f.Close())

		d := env.descriptor(t, "log.txt")
		assert.Equal(t, int64(11), d.Size)
		assert.Equal(t, sha256Hex([]byte("hello world")), d.Digest(metadata.DigestSHA256))
	})

	t.Run("AppendRegenerates", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "log.txt", []byte("ab")))

		f, err := env.fs.OpenFile(ctx, "log.txt", store.ModeAppend)
		require.NoError(t, err)
		_, err = f.Write([]byte("cd"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		d := env.descriptor(t, "log.txt")
		assert.Equal(t, int64(4), d.Size)
		assert.Equal(t, sha256Hex([]byte("abcd")), d.Digest(metadata.DigestSHA256))
	})

	t.Run("UpdateModeReadsAndWrites", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "f", []byte("xxxx")))

		f, err := env.fs.OpenFile(ctx, "f", store.ModeUpdate)
		require.NoError(t, err)

		buf := make([]byte, 2)
		_, err = io.ReadFull(f, buf)
		require.NoError(t, err)
		assert.Equal(t, "xx", string(buf))

		_, err = f.Seek(0, io.SeekStart)
		require.NoError(t, err)
		_, err = f.Write([]byte("yy"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		assert.Equal(t, sha256Hex([]byte("yyxx")), env.descriptor(t, "f").Digest(metadata.DigestSHA256))
	})

	t.Run("ReadOnlyNeverTouchesMetadata", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.fs.WriteFile(ctx, "f", []byte("data")))
		env.meta.Reset()

		f, err := env.fs.OpenFile(ctx, "f", store.ModeRead)
		require.NoError(t, err)
		_, isHandle := f.(*Handle)
		assert.False(t, isHandle)

		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
		require.NoError(t, f.Close())

		assert.Empty(t, env.meta.Calls(storetest.OpWriteFile))
		assert.Empty(t, env.meta.Calls(storetest.OpMkdirAll))
	})

	t.Run("CloseTwiceIsNoop", func(t *testing.T) {
		env := newTestEnv(t)
		f, err := env.fs.OpenFile(ctx, "f", store.ModeWrite)
		require.NoError(t, err)
		_, err = f.Write([]byte("once"))
		require.NoError(t, err)

		require.NoError(t, f.Close())
		require.NoError(t, f.Close())

		assert.Equal(t, []string{"f/tulip.json"}, env.meta.Calls(storetest.OpWriteFile))
	})

	t.Run("ReadBackFailureRemovesContent", func(t *testing.T) {
		env := newTestEnv(t)
		f, err := env.fs.OpenFile(ctx, "f", store.ModeWrite)
		require.NoError(t, err)
		_, err = f.Write([]byte("data"))
		require.NoError(t, err)

		env.content.Fail(storetest.OpOpen, "f", nil)
		require.ErrorIs(t, f.Close(), storetest.ErrInjected)

		env.requireContent(t, "f", false)
		env.requireMeta(t, "f", false)
		assert.Equal(t, []bool{true}, env.metrics.compensations["close"])
	})

	t.Run("SidecarWriteFailureRemovesContent", func(t *testing.T) {
		env := newTestEnv(t)
		env.meta.Fail(storetest.OpWriteFile, "f/tulip.json", nil)

		f, err := env.fs.OpenFile(ctx, "f", store.ModeWrite)
		require.NoError(t, err)
		require.ErrorIs(t, f.Close(), storetest.ErrInjected)

		env.requireContent(t, "f", false)
	})

	t.Run("VanishedEntry", func(t *testing.T) {
		env := newTestEnv(t)
		f, err := env.fs.OpenFile(ctx, "f", store.ModeWrite)
		require.NoError(t, err)
		_, err = f.Write([]byte("data"))
		require.NoError(t, err)

		require.NoError(t, env.content.Store.Remove(ctx, "f"))

		assert.ErrorIs(t, f.Close(), store.ErrNotFound)
		env.requireMeta(t, "f", false)
	})

	t.Run("ReservedNameRejectedForWrites", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.fs.OpenFile(ctx, "tulip.json", store.ModeWrite)
		assert.ErrorIs(t, err, ErrReservedName)
	})

	t.Run("OpenFailure", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.fs.OpenFile(ctx, "missing/f", store.ModeWrite)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
