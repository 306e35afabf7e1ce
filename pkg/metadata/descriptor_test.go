package metadata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)

func strPtr(s string) *string { return &s }

func sampleFile() *Descriptor {
	return &Descriptor{
		Type:      KindFile,
		Path:      "a/b/photo.jpg",
		Name:      "photo.jpg",
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
		Size:      3,
		Digests:   map[string]*string{DigestSHA256: strPtr("abc123")},
		Extra:     map[string]any{"owner": "alice"},
	}
}

func TestDescriptorToMap(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		m := sampleFile().ToMap()

		assert.Equal(t, "file", m[KeyType])
		assert.Equal(t, "a/b/photo.jpg", m[KeyPath])
		assert.Equal(t, "photo.jpg", m[KeyName])
		assert.Equal(t, "2024-03-01T12:30:00.123456789Z", m[KeyCreatedAt])
		assert.Equal(t, int64(3), m[KeySize])
		assert.Equal(t, map[string]any{DigestSHA256: "abc123"}, m[KeyDigests])
		assert.Equal(t, "alice", m["owner"])
		assert.NotContains(t, m, KeyContentType)
	})

	t.Run("ObjectOmitsFileFields", func(t *testing.T) {
		d := &Descriptor{Type: KindObject, Path: "a", Name: "a", CreatedAt: fixedTime, UpdatedAt: fixedTime}
		m := d.ToMap()

		assert.NotContains(t, m, KeySize)
		assert.NotContains(t, m, KeyDigests)
	})

	t.Run("ReservedKeysWinOverExtra", func(t *testing.T) {
		d := sampleFile()
		d.Extra[KeyPath] = "elsewhere"

		assert.Equal(t, "a/b/photo.jpg", d.ToMap()[KeyPath])
	})

	t.Run("NullDigest", func(t *testing.T) {
		d := sampleFile()
		d.Digests[DigestSHA256] = nil

		digests := d.ToMap()[KeyDigests].(map[string]any)
		v, ok := digests[DigestSHA256]
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestFromMap(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		d, err := FromMap(sampleFile().ToMap())
		require.NoError(t, err)
		assert.Equal(t, sampleFile(), d)
	})

	t.Run("SizeRepresentations", func(t *testing.T) {
		for _, size := range []any{7, int64(7), uint64(7), float64(7), json.Number("7")} {
			m := sampleFile().ToMap()
			m[KeySize] = size

			d, err := FromMap(m)
			require.NoError(t, err, "%T", size)
			assert.Equal(t, int64(7), d.Size)
		}
	})

	t.Run("TimeValue", func(t *testing.T) {
		m := sampleFile().ToMap()
		m[KeyCreatedAt] = fixedTime.In(time.FixedZone("X", 3600))

		d, err := FromMap(m)
		require.NoError(t, err)
		assert.True(t, d.CreatedAt.Equal(fixedTime))
		assert.Equal(t, time.UTC, d.CreatedAt.Location())
	})

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"MissingType", func(m map[string]any) { delete(m, KeyType) }},
		{"UnknownType", func(m map[string]any) { m[KeyType] = "symlink" }},
		{"PathNotString", func(m map[string]any) { m[KeyPath] = 42 }},
		{"MissingName", func(m map[string]any) { delete(m, KeyName) }},
		{"BadTimestamp", func(m map[string]any) { m[KeyUpdatedAt] = "yesterday" }},
		{"MissingSize", func(m map[string]any) { delete(m, KeySize) }},
		{"NegativeSize", func(m map[string]any) { m[KeySize] = -1 }},
		{"FractionalSize", func(m map[string]any) { m[KeySize] = 1.5 }},
		{"DigestsNotMapping", func(m map[string]any) { m[KeyDigests] = "abc" }},
		{"DigestNotString", func(m map[string]any) { m[KeyDigests] = map[string]any{"sha256": 1} }},
		{"ContentTypeNotString", func(m map[string]any) { m[KeyContentType] = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleFile().ToMap()
			tt.mutate(m)

			_, err := FromMap(m)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestObjectFileOnlyKeys(t *testing.T) {
	mixins := map[string]any{
		KeySize:        "large",
		KeyDigests:     "n/a",
		KeyContentType: 7,
		"other":        1,
	}

	obj := &Descriptor{Type: KindObject, Path: "o", Name: "o", CreatedAt: fixedTime, UpdatedAt: fixedTime}
	d, err := obj.Merge(mixins)
	require.NoError(t, err)
	assert.Equal(t, mixins, d.Extra)
	assert.Zero(t, d.Size)
	assert.Nil(t, d.Digests)

	m := d.ToMap()
	assert.Equal(t, "large", m[KeySize])
	assert.Equal(t, "n/a", m[KeyDigests])

	for _, c := range []Codec{JSONCodec{}, YAMLCodec{}} {
		data, err := c.Encode(d)
		require.NoError(t, err)
		got, err := c.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, mixins, got.Extra, c.Filename())
	}

	// On files the same keys stay reserved and are validated.
	_, err = sampleFile().Merge(map[string]any{KeySize: "large"})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestDescriptorMerge(t *testing.T) {
	t.Run("AddsExtensionFields", func(t *testing.T) {
		d, err := sampleFile().Merge(map[string]any{"license": "CC-BY", "owner": "bob"})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"owner": "bob", "license": "CC-BY"}, d.Extra)
		assert.Equal(t, int64(3), d.Size)
	})

	t.Run("DoesNotModifyReceiver", func(t *testing.T) {
		orig := sampleFile()
		_, err := orig.Merge(map[string]any{"owner": "bob"})
		require.NoError(t, err)

		assert.Equal(t, "alice", orig.Extra["owner"])
	})

	t.Run("InvalidReservedOverride", func(t *testing.T) {
		_, err := sampleFile().Merge(map[string]any{KeyType: "bogus"})
		assert.ErrorIs(t, err, ErrInvalidDescriptor)
	})
}

func TestDescriptorRelocate(t *testing.T) {
	orig := sampleFile()
	moved := orig.Relocate("x/y/renamed.jpg")

	assert.Equal(t, "x/y/renamed.jpg", moved.Path)
	assert.Equal(t, "renamed.jpg", moved.Name)
	assert.Equal(t, orig.Digest(DigestSHA256), moved.Digest(DigestSHA256))
	assert.Equal(t, orig.CreatedAt, moved.CreatedAt)

	*moved.Digests[DigestSHA256] = "changed"
	assert.Equal(t, "abc123", orig.Digest(DigestSHA256))
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "a/b/tulip.json", SidecarPath("a/b", JSONFilename))
	assert.Equal(t, "tulip.json", SidecarPath("", JSONFilename))
}
