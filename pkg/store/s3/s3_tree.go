package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Remove deletes the file or empty directory at p.
func (s *Store) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("remove root: %w", store.ErrInvalidPath)
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	if info == nil {
		return fmt.Errorf("remove %s: %w", p, store.ErrNotFound)
	}

	key := s.objectKey(p)
	if info.IsDir {
		nonEmpty, err := s.hasChildren(ctx, p)
		if err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		if nonEmpty {
			return fmt.Errorf("remove %s: %w", p, store.ErrNotEmpty)
		}
		key = s.dirKey(p)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// RemoveAll deletes p and every object below it.
func (s *Store) RemoveAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return fmt.Errorf("removeall %s: %w", p, err)
	}
	if info == nil {
		return fmt.Errorf("removeall %s: %w", p, store.ErrNotFound)
	}

	var keys []string
	if info.IsDir {
		keys, err = s.listKeys(ctx, s.dirKey(p))
		if err != nil {
			return fmt.Errorf("removeall %s: %w", p, err)
		}
	} else {
		keys = []string{s.objectKey(p)}
	}

	if err := s.deleteKeys(ctx, keys); err != nil {
		return fmt.Errorf("removeall %s: %w", p, err)
	}
	return nil
}

// deleteKeys removes keys in batches of deleteBatchSize.
func (s *Store) deleteKeys(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return err
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("delete %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}

// Copy duplicates the object or prefix at src to dst with server-side copies.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	_, err := s.relocate(ctx, "copy", src, dst)
	return err
}

// Move copies src to dst and then deletes the source objects.
func (s *Store) Move(ctx context.Context, src, dst string) error {
	sources, err := s.relocate(ctx, "move", src, dst)
	if err != nil {
		return err
	}
	if err := s.deleteKeys(ctx, sources); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}

// relocate performs the copy half of Copy and Move and returns the source
// keys that were copied.
func (s *Store) relocate(ctx context.Context, op, src, dst string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == "" || dst == "" {
		return nil, fmt.Errorf("%s %q to %q: %w", op, src, dst, store.ErrInvalidPath)
	}
	if store.IsWithin(dst, src) {
		return nil, fmt.Errorf("%s %s into itself (%s): %w", op, src, dst, store.ErrInvalidPath)
	}

	// ========================================================================
	// Step 1: Validate source and destination
	// ========================================================================

	info, err := s.lookup(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, src, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%s %s: %w", op, src, store.ErrNotFound)
	}
	existing, err := s.lookup(ctx, dst)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, dst, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s %s: %w", op, dst, store.ErrExists)
	}
	if err := s.requireParentDir(ctx, op, dst); err != nil {
		return nil, err
	}

	// ========================================================================
	// Step 2: Server-side copy of every object
	// ========================================================================

	if !info.IsDir {
		if err := s.copyObject(ctx, s.objectKey(src), s.objectKey(dst)); err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, src, err)
		}
		return []string{s.objectKey(src)}, nil
	}

	keys, err := s.listKeys(ctx, s.dirKey(src))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, src, err)
	}

	// Implicit source directories have no marker; give the copy one so it
	// survives even when empty.
	if err := s.putMarker(ctx, dst); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, dst, err)
	}

	srcPrefix, dstPrefix := s.dirKey(src), s.dirKey(dst)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if key == srcPrefix {
			continue
		}
		target := dstPrefix + key[len(srcPrefix):]
		if err := s.copyObject(ctx, key, target); err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, key, err)
		}
	}
	return keys, nil
}

func (s *Store) copyObject(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.copySource(srcKey)),
		Key:        aws.String(dstKey),
	})
	return err
}
