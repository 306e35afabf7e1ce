// Package s3 implements a store.Store on Amazon S3 or any S3-compatible
// service (MinIO, Localstack, Cubbit DS3).
//
// This file contains the store type, its constructor and the key and error
// helpers shared by the read, write and tree operations.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/tulipfs/pkg/store"
)

// deleteBatchSize is the S3 limit for DeleteObjects.
const deleteBatchSize = 1000

// Store implements store.Store on an S3 bucket.
//
// Key Design:
//   - A file at Entry Path "a/b.txt" is the object "<prefix>a/b.txt"
//   - A directory "a" is the zero-length marker object "<prefix>a/"
//   - Directories without a marker are still recognized when any object
//     lives below them (buckets populated by other tools)
//
// The bucket therefore mirrors the filesystem and stays browsable in the S3
// console.
//
// S3 Characteristics:
//   - No partial writes: Open buffers the object in memory and uploads it on
//     Sync or Close
//   - Copy and Move of directories touch every object below them; Move is
//     not atomic
//   - Checksum returns the object ETag
//
// Thread Safety:
// Safe for concurrent use. Concurrent writes to the same key are
// last-writer-wins.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config contains the S3 store configuration.
type Config struct {
	// Client is the configured S3 client
	Client *s3.Client

	// Bucket is the S3 bucket name
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "tulip/assets/" results in keys like "tulip/assets/a/tulip.json"
	KeyPrefix string
}

// New creates an S3 store and verifies bucket access. The bucket must already
// exist.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: S3 configuration
//
// Returns:
//   - *Store: Initialized store
//   - error: If the configuration is incomplete or the bucket is unreachable
func New(ctx context.Context, cfg Config) (*Store, error) {
	// ========================================================================
	// Step 1: Check context before S3 operations
	// ========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ========================================================================
	// Step 2: Validate configuration
	// ========================================================================

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	keyPrefix := strings.Trim(cfg.KeyPrefix, "/")
	if keyPrefix != "" {
		keyPrefix += "/"
	}

	// ========================================================================
	// Step 3: Verify bucket access
	// ========================================================================

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", cfg.Bucket, err)
	}

	return &Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: keyPrefix,
	}, nil
}

func (s *Store) String() string {
	return "s3://" + s.bucket + "/" + s.keyPrefix
}

// ============================================================================
// Keys
// ============================================================================

// objectKey is the key of the file at p.
func (s *Store) objectKey(p string) string {
	return s.keyPrefix + p
}

// dirKey is the key of the directory marker for p, and the listing prefix
// of its children.
func (s *Store) dirKey(p string) string {
	if p == "" {
		return s.keyPrefix
	}
	return s.keyPrefix + p + "/"
}

// entryPath maps an object key back to an Entry Path.
func (s *Store) entryPath(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, s.keyPrefix), "/")
}

// copySource builds the URL-encoded CopySource value for key.
func (s *Store) copySource(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.bucket + "/" + strings.Join(segments, "/")
}

// ============================================================================
// Errors and lookups
// ============================================================================

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

// lookup resolves p to an Info, or nil when nothing exists there.
func (s *Store) lookup(ctx context.Context, p string) (*store.Info, error) {
	if p == "" {
		return &store.Info{IsDir: true}, nil
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(p)),
	})
	if err == nil {
		return &store.Info{
			Name:    store.Base(p),
			Path:    p,
			Size:    aws.ToInt64(head.ContentLength),
			ModTime: aws.ToTime(head.LastModified),
		}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	marker, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.dirKey(p)),
	})
	if err == nil {
		return &store.Info{
			Name:    store.Base(p),
			Path:    p,
			IsDir:   true,
			ModTime: aws.ToTime(marker.LastModified),
		}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	implicit, err := s.hasObjectsBelow(ctx, p)
	if err != nil {
		return nil, err
	}
	if implicit {
		return &store.Info{Name: store.Base(p), Path: p, IsDir: true}, nil
	}
	return nil, nil
}

// hasObjectsBelow reports whether any object (marker included) lives under
// the directory prefix of p.
func (s *Store) hasObjectsBelow(ctx context.Context, p string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirKey(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return aws.ToInt32(out.KeyCount) > 0, nil
}

// hasChildren reports whether the directory p contains anything besides its
// own marker.
func (s *Store) hasChildren(ctx context.Context, p string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirKey(p)),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return false, err
	}
	for _, obj := range out.Contents {
		if aws.ToString(obj.Key) != s.dirKey(p) {
			return true, nil
		}
	}
	return false, nil
}

// listKeys returns every object key under prefix.
func (s *Store) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// requireParentDir verifies that the parent of p is an existing directory.
func (s *Store) requireParentDir(ctx context.Context, op, p string) error {
	parent := store.Dir(p)
	if parent == "" {
		return nil
	}
	info, err := s.lookup(ctx, parent)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, p, err)
	}
	if info == nil {
		return fmt.Errorf("%s %s: parent %s: %w", op, p, parent, store.ErrNotFound)
	}
	if !info.IsDir {
		return fmt.Errorf("%s %s: parent %s: %w", op, p, parent, store.ErrNotDir)
	}
	return nil
}

func (s *Store) putMarker(ctx context.Context, p string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.dirKey(p)),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	return err
}

var _ store.Store = (*Store)(nil)
