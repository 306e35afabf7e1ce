package s3

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Exists reports whether an entry exists at p.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", p, err)
	}
	return info != nil, nil
}

// Stat returns information about the entry at p.
func (s *Store) Stat(ctx context.Context, p string) (*store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info == nil {
		return nil, fmt.Errorf("stat %s: %w", p, store.ErrNotFound)
	}
	return info, nil
}

// ReadFile downloads the object at p.
func (s *Store) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == "" {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrIsDir)
	}

	data, found, err := s.getObject(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if found {
		return data, nil
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if info != nil && info.IsDir {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrIsDir)
	}
	return nil, fmt.Errorf("read %s: %w", p, store.ErrNotFound)
}

// getObject downloads the file object at p. found is false when the key does
// not exist.
func (s *Store) getObject(ctx context.Context, p string) (data []byte, found bool, err error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(p)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = out.Body.Close() }()

	data, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, true, nil
}

// ReadDir lists the children of the directory at p using a delimited
// listing, sorted by name.
func (s *Store) ReadDir(ctx context.Context, p string) ([]store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.lookup(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", p, err)
	}
	if info == nil {
		return nil, fmt.Errorf("readdir %s: %w", p, store.ErrNotFound)
	}
	if !info.IsDir {
		return nil, fmt.Errorf("readdir %s: %w", p, store.ErrNotDir)
	}

	prefix := s.dirKey(p)
	out := []store.Info{}
	seen := make(map[string]bool)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("readdir %s: %w", p, err)
		}

		for _, cp := range page.CommonPrefixes {
			child := s.entryPath(aws.ToString(cp.Prefix))
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, store.Info{Name: store.Base(child), Path: child, IsDir: true})
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}
			child := s.entryPath(key)
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, store.Info{
				Name:    store.Base(child),
				Path:    child,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Checksum returns the ETag of the object at p.
func (s *Store) Checksum(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(p)),
	})
	if err != nil {
		if !isNotFound(err) {
			return "", fmt.Errorf("checksum %s: %w", p, err)
		}
		info, lerr := s.lookup(ctx, p)
		if lerr == nil && info != nil && info.IsDir {
			return "", fmt.Errorf("checksum %s: %w", p, store.ErrIsDir)
		}
		return "", fmt.Errorf("checksum %s: %w", p, store.ErrNotFound)
	}
	return strings.Trim(aws.ToString(head.ETag), `"`), nil
}
