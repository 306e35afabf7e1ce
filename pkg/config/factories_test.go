package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/archive"
	"github.com/marmos91/tulipfs/pkg/store/memory"
)

func TestCreateStore_Filesystem(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "objects")

	s, err := CreateStore(ctx, &StoreConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{"path": root, "dir_mode": "0750"},
	})
	require.NoError(t, err)

	require.NoError(t, s.WriteFile(ctx, "a.txt", []byte("hi")))
	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestCreateStore_Memory(t *testing.T) {
	s, err := CreateStore(context.Background(), &StoreConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)
}

func TestCreateStore_Badger(t *testing.T) {
	ctx := context.Background()

	s, err := CreateStore(ctx, &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{"in_memory": true},
	})
	require.NoError(t, err)

	closer, ok := s.(store.Closer)
	require.True(t, ok)
	defer func() { _ = closer.Close() }()

	require.NoError(t, s.MkdirAll(ctx, "a/b"))
	ok, err = store.IsDir(ctx, s, "a/b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateStore_Archive(t *testing.T) {
	ctx := context.Background()

	src := memory.New()
	require.NoError(t, src.MkdirAll(ctx, "a"))
	require.NoError(t, src.WriteFile(ctx, "a/tulip.json", []byte(`{}`)))

	path := filepath.Join(t.TempDir(), "assets.tar.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = archive.Export(ctx, f, src, "", archive.Zstd)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s, err := CreateStore(ctx, &StoreConfig{
		Type:    "archive",
		Archive: map[string]any{"path": path},
	})
	require.NoError(t, err)

	data, err := s.ReadFile(ctx, "a/tulip.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
	assert.ErrorIs(t, s.WriteFile(ctx, "b", nil), store.ErrReadOnly)
}

func TestCreateStore_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     StoreConfig
		wantErr string
	}{
		{"unknown type", StoreConfig{Type: "tape"}, "unknown store type"},
		{"filesystem without path", StoreConfig{Type: "filesystem"}, "path is required"},
		{"badger without path", StoreConfig{Type: "badger"}, "path is required"},
		{"archive without path", StoreConfig{Type: "archive"}, "path is required"},
		{"s3 without bucket", StoreConfig{Type: "s3", S3: map[string]any{"region": "eu-west-1"}}, "bucket is required"},
		{"s3 without region", StoreConfig{Type: "s3", S3: map[string]any{"bucket": "b"}}, "region is required"},
		{"bad option type", StoreConfig{Type: "filesystem", Filesystem: map[string]any{"path": []string{"x"}}}, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateStore(ctx, &tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CreateStore(ctx, &StoreConfig{Type: "memory"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGenerator(t *testing.T) {
	gen, err := NewGenerator(&SidecarConfig{Digests: []string{"xxh64", "sha256"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sha256", "xxh64"}, gen.Digests())

	_, err = NewGenerator(&SidecarConfig{Digests: []string{"md5"}})
	assert.ErrorIs(t, err, metadata.ErrUnknownDigest)
}

func TestNewCodec(t *testing.T) {
	codec, err := NewCodec(&SidecarConfig{Format: "json", Indent: "  "})
	require.NoError(t, err)
	assert.Equal(t, metadata.JSONCodec{Indent: "  "}, codec)

	codec, err = NewCodec(&SidecarConfig{Format: "yaml"})
	require.NoError(t, err)
	assert.Equal(t, metadata.YAMLFilename, codec.Filename())

	_, err = NewCodec(&SidecarConfig{Format: "toml"})
	assert.ErrorIs(t, err, metadata.ErrUnknownFormat)
}

func TestDecodeS3Options(t *testing.T) {
	var opts s3Options
	err := decodeOptions(map[string]any{
		"region":              "eu-west-1",
		"bucket":              "tulip",
		"key_prefix":          "assets/",
		"force_path_style":    "true",
		"requests_per_second": "50",
		"burst":               100,
	}, &opts)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", opts.Region)
	assert.Equal(t, "tulip", opts.Bucket)
	assert.True(t, opts.ForcePathStyle)
	assert.Equal(t, uint(50), opts.RequestsPerSecond)
	assert.Equal(t, uint(100), opts.Burst)
}
