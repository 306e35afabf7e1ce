//go:build integration

// Package integration runs repositories over real backends: S3 content on
// Localstack next to Badger or S3 metadata.
//
// Run with:
//
//	go test -tags=integration ./test/integration/...
//
// A Localstack container is started through testcontainers unless
// LOCALSTACK_ENDPOINT points at a running instance.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/tulipfs/pkg/config"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/repository"
	"github.com/marmos91/tulipfs/pkg/store"
)

const region = "us-east-1"

// startLocalstack returns the endpoint of a Localstack S3 service.
func startLocalstack(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "localstack/localstack:3.0",
			ExposedPorts: []string{"4566/tcp"},
			Env: map[string]string{
				"SERVICES":       "s3",
				"DEFAULT_REGION": region,
			},
			WaitingFor: wait.ForHTTP("/_localstack/health").
				WithPort("4566/tcp").
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start localstack")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4566")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

// createBucket creates a uniquely named bucket and returns its name.
func createBucket(t *testing.T, endpoint string) string {
	t.Helper()
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	bucket := "tulip-" + uuid.NewString()[:8]
	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)
	return bucket
}

func s3Section(endpoint, bucket, prefix string) map[string]any {
	return map[string]any{
		"region":              region,
		"bucket":              bucket,
		"key_prefix":          prefix,
		"endpoint":            endpoint,
		"access_key_id":       "test",
		"secret_access_key":   "test",
		"requests_per_second": 500,
	}
}

func openRepository(t *testing.T, cfg *config.Config) *repository.Repository {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	config.ApplyDefaults(cfg)
	require.NoError(t, config.Validate(cfg))

	repo, err := repository.FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repo.Close()) })
	return repo
}

// exercise runs the full entity lifecycle against repo.
func exercise(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	fsys := repo.FS()

	_, err := repo.CreateObject(ctx, "images/dogs", map[string]any{"breed": "corgi"})
	require.NoError(t, err)
	_, err = repo.CreateFile(ctx, "images/dogs/rex.txt", []byte("woof"), map[string]any{"good": true})
	require.NoError(t, err)

	d, err := fsys.ReadMetadata(ctx, "images/dogs/rex.txt")
	require.NoError(t, err)
	assert.Equal(t, metadata.KindFile, d.Type)
	assert.Equal(t, int64(4), d.Size)
	assert.Equal(t, true, d.Extra["good"])
	assert.NotEmpty(t, d.Digest(metadata.DigestSHA256))

	require.NoError(t, fsys.Copy(ctx, "images", "backup"))
	require.NoError(t, fsys.Move(ctx, "images/dogs", "dogs"))

	moved, err := fsys.ReadMetadata(ctx, "dogs/rex.txt")
	require.NoError(t, err)
	assert.Equal(t, "dogs/rex.txt", moved.Path)

	data, err := fsys.ReadFile(ctx, "backup/dogs/rex.txt")
	require.NoError(t, err)
	assert.Equal(t, "woof", string(data))

	report, err := fsys.Check(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "report: %+v", report)

	assert.ErrorIs(t, fsys.RemoveDir(ctx, "backup"), store.ErrNotEmpty)
	require.NoError(t, repo.DeleteObject(ctx, "backup", true))
	require.NoError(t, repo.DeleteFile(ctx, "dogs/rex.txt"))

	for _, s := range []store.Store{fsys.Content(), fsys.Meta()} {
		ok, err := s.Exists(ctx, "backup")
		require.NoError(t, err)
		assert.False(t, ok, s.String())
	}
}

func TestS3ContentBadgerMetadata(t *testing.T) {
	endpoint := startLocalstack(t)
	bucket := createBucket(t, endpoint)

	repo := openRepository(t, &config.Config{
		Content: config.StoreConfig{Type: "s3", S3: s3Section(endpoint, bucket, "objects")},
		Metadata: config.StoreConfig{
			Type:   "badger",
			Badger: map[string]any{"path": filepath.Join(t.TempDir(), "assets.badger")},
		},
	})

	exercise(t, repo)
}

func TestS3BothStores(t *testing.T) {
	endpoint := startLocalstack(t)
	bucket := createBucket(t, endpoint)

	repo := openRepository(t, &config.Config{
		Content:  config.StoreConfig{Type: "s3", S3: s3Section(endpoint, bucket, "objects")},
		Metadata: config.StoreConfig{Type: "s3", S3: s3Section(endpoint, bucket, "assets")},
		Sidecar:  config.SidecarConfig{Format: "yaml", Digests: []string{"sha256", "xxh64"}},
	})

	exercise(t, repo)

	ctx := context.Background()
	_, err := repo.CreateFile(ctx, "notes.txt", []byte("hi"), nil)
	require.NoError(t, err)

	ok, err := repo.FS().Meta().Exists(ctx, "notes.txt/tulip.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}
