package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Open opens the object at p. The handle buffers the object in memory and
// uploads it on Sync or Close.
func (s *Store) Open(ctx context.Context, p string, mode store.OpenMode) (store.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == "" {
		return nil, fmt.Errorf("open %s: %w", p, store.ErrIsDir)
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}

	var initial []byte
	switch {
	case info != nil && info.IsDir:
		return nil, fmt.Errorf("open %s: %w", p, store.ErrIsDir)
	case info != nil && mode&store.OpenExclusive != 0:
		return nil, fmt.Errorf("open %s: %w", p, store.ErrExists)
	case info == nil && !mode.Creates():
		return nil, fmt.Errorf("open %s: %w", p, store.ErrNotFound)
	case info == nil:
		if err := s.requireParentDir(ctx, "open", p); err != nil {
			return nil, err
		}
	case mode&store.OpenTruncate == 0:
		data, found, err := s.getObject(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		if !found {
			return nil, fmt.Errorf("open %s: %w", p, store.ErrNotFound)
		}
		initial = data
	default:
		initial = []byte{}
	}

	if !mode.Mutates() {
		return store.NewBufferFile(p, initial, mode, nil), nil
	}
	// The upload outlives the Open call, so it must not inherit a request
	// scoped context that may already be cancelled by then.
	uploadCtx := context.WithoutCancel(ctx)
	return store.NewBufferFile(p, initial, mode, func(data []byte) error {
		return s.putObject(uploadCtx, p, data)
	}), nil
}

// WriteFile uploads data as the object at p.
func (s *Store) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("write %s: %w", p, store.ErrIsDir)
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	if info != nil && info.IsDir {
		return fmt.Errorf("write %s: %w", p, store.ErrIsDir)
	}
	if err := s.requireParentDir(ctx, "write", p); err != nil {
		return err
	}

	if err := s.putObject(ctx, p, data); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (s *Store) putObject(ctx context.Context, p string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(p)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	return err
}

// Mkdir creates the marker for directory p. Its parent must exist.
func (s *Store) Mkdir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("mkdir %s: %w", p, store.ErrExists)
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	if info != nil {
		return fmt.Errorf("mkdir %s: %w", p, store.ErrExists)
	}
	if err := s.requireParentDir(ctx, "mkdir", p); err != nil {
		return err
	}

	if err := s.putMarker(ctx, p); err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	return nil
}

// MkdirAll creates markers for p and any missing parents.
func (s *Store) MkdirAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, prefix := range store.Ancestors(p) {
		info, err := s.lookup(ctx, prefix)
		if err != nil {
			return fmt.Errorf("mkdir %s: %w", p, err)
		}
		if info != nil && !info.IsDir {
			return fmt.Errorf("mkdir %s: %s: %w", p, prefix, store.ErrNotDir)
		}
		if info == nil {
			if err := s.putMarker(ctx, prefix); err != nil {
				return fmt.Errorf("mkdir %s: %w", p, err)
			}
		}
	}
	return nil
}
