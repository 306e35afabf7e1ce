package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Export writes the tree below root in src to w as a tar archive compressed
// with c. Entry names are relative to root. It returns the number of entries
// written.
func Export(ctx context.Context, w io.Writer, src store.Store, root string, c Compression) (int, error) {
	zw, err := newWriter(w, c)
	if err != nil {
		return 0, err
	}
	tw := tar.NewWriter(zw)

	count := 0
	err = store.Walk(ctx, src, root, func(p string, info *store.Info, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		name := p
		if root != "" {
			name = p[len(root)+1:]
		}

		hdr := &tar.Header{
			Name:    name,
			ModTime: info.ModTime,
			Format:  tar.FormatPAX,
		}
		if info.IsDir {
			hdr.Typeflag = tar.TypeDir
			hdr.Name += "/"
			hdr.Mode = 0755
			if err := tw.WriteHeader(hdr); err != nil {
				return fmt.Errorf("export %s: %w", p, err)
			}
			count++
			return nil
		}

		data, err := src.ReadFile(ctx, p)
		if err != nil {
			return err
		}
		hdr.Typeflag = tar.TypeReg
		hdr.Mode = 0644
		hdr.Size = int64(len(data))
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("export %s: %w", p, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("export %s: %w", p, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := tw.Close(); err != nil {
		return count, fmt.Errorf("export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("export: %w", err)
	}
	return count, nil
}
