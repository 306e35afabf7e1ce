package entity

import (
	"context"

	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
)

// File is a file-entity.
type File struct {
	base
	content []byte
}

var _ Entity = (*File)(nil)

// NewFile binds a file-entity at p to fs with the content Save will write.
// A nil content describes a file whose bytes are not known yet.
func NewFile(fs *dualfs.FS, p string, content []byte, mixins map[string]any) (*File, error) {
	b, err := newBase(fs, p, mixins)
	if err != nil {
		return nil, err
	}
	return &File{base: b, content: content}, nil
}

func (f *File) Kind() metadata.Kind { return metadata.KindFile }

// GenerateMetadata describes the pending content, or a placeholder when
// there is none.
func (f *File) GenerateMetadata() (*metadata.Descriptor, error) {
	if f.content == nil {
		return f.fs.Generator().GeneratePlaceholderFile(f.path), nil
	}
	return f.fs.Generator().GenerateFile(f.path, f.content)
}

// Save writes the pending content (empty when nil). The parent
// directory-entity must exist.
func (f *File) Save(ctx context.Context) error {
	if err := f.fs.WriteFile(ctx, f.path, f.content); err != nil {
		return err
	}
	return f.applyMixins(ctx)
}

// Delete removes the file-entity.
func (f *File) Delete(ctx context.Context) error {
	return f.fs.Remove(ctx, f.path)
}

// Content reads the stored bytes.
func (f *File) Content(ctx context.Context) ([]byte, error) {
	return f.fs.ReadFile(ctx, f.path)
}

// Open streams the file. Mutating modes regenerate the descriptor on Close.
func (f *File) Open(ctx context.Context, mode store.OpenMode) (store.File, error) {
	return f.fs.OpenFile(ctx, f.path, mode)
}
