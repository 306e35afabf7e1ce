// Package metadata generates, encodes and decodes sidecar descriptors.
//
// A descriptor is the metadata record kept in the metadata store for every
// content entry. It is generated deterministically from the entry path, a
// clock and (for files) the content bytes, and carries arbitrary extension
// fields alongside the reserved ones.
package metadata

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/marmos91/tulipfs/pkg/store"
)

// Kind discriminates directory-entities from file-entities.
type Kind string

const (
	KindObject Kind = "object"
	KindFile   Kind = "file"
)

// Reserved descriptor keys. Any other key is an extension field.
const (
	KeyType        = "type"
	KeyPath        = "path"
	KeyName        = "name"
	KeyCreatedAt   = "created_at"
	KeyUpdatedAt   = "updated_at"
	KeySize        = "size"
	KeyDigests     = "digests"
	KeyContentType = "content_type"
)

// TimeFormat is the encoding of created_at and updated_at.
const TimeFormat = time.RFC3339Nano

// Descriptor is a decoded sidecar.
type Descriptor struct {
	Type      Kind
	Path      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Size is the content length; 0 when unknown. Files only.
	Size int64

	// Digests maps algorithm names to hex digests. A nil value means the
	// content was unknown when the descriptor was generated. Files only.
	Digests map[string]*string

	// ContentType is the sniffed MIME type, empty when detection is off.
	ContentType string

	// Extra holds extension fields, flattened next to the reserved keys when
	// encoded. Both codecs decode whole numbers as int and other numbers as
	// float64.
	Extra map[string]any
}

// IsFile reports whether the descriptor describes a file-entity.
func (d *Descriptor) IsFile() bool {
	return d.Type == KindFile
}

// Digest returns the hex digest for algo, or "" when absent or unknown.
func (d *Descriptor) Digest(algo string) string {
	if v := d.Digests[algo]; v != nil {
		return *v
	}
	return ""
}

// Clone returns a deep copy of d (extension values are copied shallowly).
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	if d.Digests != nil {
		c.Digests = cloneDigests(d.Digests)
	}
	c.Extra = maps.Clone(d.Extra)
	return &c
}

// Relocate returns a copy of d describing the entry at p. Only path and name
// change.
func (d *Descriptor) Relocate(p string) *Descriptor {
	c := d.Clone()
	c.Path = p
	c.Name = store.Base(p)
	return c
}

// ToMap flattens d into the mapping that codecs encode.
func (d *Descriptor) ToMap() map[string]any {
	m := make(map[string]any, 8+len(d.Extra))
	for k, v := range d.Extra {
		m[k] = v
	}

	m[KeyType] = string(d.Type)
	m[KeyPath] = d.Path
	m[KeyName] = d.Name
	m[KeyCreatedAt] = d.CreatedAt.UTC().Format(TimeFormat)
	m[KeyUpdatedAt] = d.UpdatedAt.UTC().Format(TimeFormat)

	if d.IsFile() {
		m[KeySize] = d.Size
		digests := make(map[string]any, len(d.Digests))
		for algo, v := range d.Digests {
			if v == nil {
				digests[algo] = nil
			} else {
				digests[algo] = *v
			}
		}
		m[KeyDigests] = digests
		if d.ContentType != "" {
			m[KeyContentType] = d.ContentType
		}
	}
	return m
}

// FromMap builds a Descriptor from a decoded mapping. Reserved keys are
// validated; everything else lands in Extra.
func FromMap(m map[string]any) (*Descriptor, error) {
	d := &Descriptor{}

	kind, err := stringField(m, KeyType)
	if err != nil {
		return nil, err
	}
	d.Type = Kind(kind)
	if d.Type != KindObject && d.Type != KindFile {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidDescriptor, kind)
	}

	if d.Path, err = stringField(m, KeyPath); err != nil {
		return nil, err
	}
	if d.Name, err = stringField(m, KeyName); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = timeField(m, KeyCreatedAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = timeField(m, KeyUpdatedAt); err != nil {
		return nil, err
	}

	if d.IsFile() {
		if d.Size, err = sizeField(m); err != nil {
			return nil, err
		}
		if d.Digests, err = digestsField(m); err != nil {
			return nil, err
		}
		if v, ok := m[KeyContentType]; ok && v != nil {
			ct, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidDescriptor, KeyContentType)
			}
			d.ContentType = ct
		}
	}

	for k, v := range m {
		if isReserved(d.Type, k) {
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[k] = v
	}
	return d, nil
}

// Merge returns a copy of d with mixins applied on top (shallow; mixin keys
// win). Mixins may override reserved keys as long as the result is valid.
func (d *Descriptor) Merge(mixins map[string]any) (*Descriptor, error) {
	m := d.ToMap()
	for k, v := range mixins {
		m[k] = v
	}
	return FromMap(m)
}

// SidecarPath is the location of the sidecar for the entry at p.
func SidecarPath(p, filename string) string {
	return store.Join(p, filename)
}

// isReserved reports whether k is a reserved key for descriptors of kind.
// size, digests and content_type are reserved for files only; on objects
// they are ordinary extension fields.
func isReserved(kind Kind, k string) bool {
	switch k {
	case KeyType, KeyPath, KeyName, KeyCreatedAt, KeyUpdatedAt:
		return true
	case KeySize, KeyDigests, KeyContentType:
		return kind == KindFile
	}
	return false
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidDescriptor, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidDescriptor, key, v)
	}
	return s, nil
}

func timeField(m map[string]any, key string) (time.Time, error) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing %s", ErrInvalidDescriptor, key)
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(TimeFormat, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, key, err)
		}
		return parsed.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s must be a timestamp, got %T", ErrInvalidDescriptor, key, v)
	}
}

func sizeField(m map[string]any) (int64, error) {
	v, ok := m[KeySize]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidDescriptor, KeySize)
	}

	var size int64
	switch n := v.(type) {
	case int:
		size = int64(n)
	case int64:
		size = n
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s overflows", ErrInvalidDescriptor, KeySize)
		}
		size = int64(n)
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidDescriptor, KeySize)
		}
		size = int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, KeySize, err)
		}
		size = i
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidDescriptor, KeySize, v)
	}

	if size < 0 {
		return 0, fmt.Errorf("%w: negative %s", ErrInvalidDescriptor, KeySize)
	}
	return size, nil
}

func digestsField(m map[string]any) (map[string]*string, error) {
	v, ok := m[KeyDigests]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDescriptor, KeyDigests)
	}

	var raw map[string]any
	switch t := v.(type) {
	case map[string]any:
		raw = t
	case map[string]*string:
		return cloneDigests(t), nil
	case map[string]string:
		raw = make(map[string]any, len(t))
		for k, s := range t {
			raw[k] = s
		}
	default:
		return nil, fmt.Errorf("%w: %s must be a mapping, got %T", ErrInvalidDescriptor, KeyDigests, v)
	}

	digests := make(map[string]*string, len(raw))
	for algo, dv := range raw {
		switch s := dv.(type) {
		case nil:
			digests[algo] = nil
		case string:
			digests[algo] = &s
		default:
			return nil, fmt.Errorf("%w: digest %s must be a string or null", ErrInvalidDescriptor, algo)
		}
	}
	return digests, nil
}

func cloneDigests(in map[string]*string) map[string]*string {
	out := make(map[string]*string, len(in))
	for k, v := range in {
		if v != nil {
			s := *v
			v = &s
		}
		out[k] = v
	}
	return out
}
