package entity

import (
	"context"

	"github.com/marmos91/tulipfs/pkg/dualfs"
	"github.com/marmos91/tulipfs/pkg/metadata"
)

// Object is a directory-entity.
type Object struct {
	base
}

var _ Entity = (*Object)(nil)

// NewObject binds a directory-entity at p to fs. Nothing is written until
// Save. mixins, when non-empty, are merged into the descriptor on Save.
func NewObject(fs *dualfs.FS, p string, mixins map[string]any) (*Object, error) {
	b, err := newBase(fs, p, mixins)
	if err != nil {
		return nil, err
	}
	return &Object{base: b}, nil
}

func (o *Object) Kind() metadata.Kind { return metadata.KindObject }

func (o *Object) GenerateMetadata() (*metadata.Descriptor, error) {
	return o.fs.Generator().GenerateObject(o.path), nil
}

// Save creates the directory-entity and any missing ancestors.
func (o *Object) Save(ctx context.Context) error {
	if err := o.fs.MakeDirs(ctx, o.path); err != nil {
		return err
	}
	return o.applyMixins(ctx)
}

// Delete removes the directory-entity. Without recursive it must be empty.
func (o *Object) Delete(ctx context.Context, recursive bool) error {
	if recursive {
		return o.fs.RemoveAll(ctx, o.path)
	}
	return o.fs.RemoveDir(ctx, o.path)
}

// Children lists the entities directly inside the object.
func (o *Object) Children(ctx context.Context) ([]Entity, error) {
	infos, err := o.fs.ReadDir(ctx, o.path)
	if err != nil {
		return nil, err
	}

	children := make([]Entity, 0, len(infos))
	for _, info := range infos {
		b := base{fs: o.fs, path: info.Path}
		if info.IsDir {
			children = append(children, &Object{base: b})
		} else {
			children = append(children, &File{base: b})
		}
	}
	return children, nil
}
