package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs(t *testing.T) {
	codecs := []struct {
		name     string
		codec    Codec
		filename string
	}{
		{"JSON", JSONCodec{}, JSONFilename},
		{"JSONIndented", JSONCodec{Indent: "  "}, JSONFilename},
		{"YAML", YAMLCodec{}, YAMLFilename},
	}

	for _, tc := range codecs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.filename, tc.codec.Filename())

			t.Run("File", func(t *testing.T) {
				orig := sampleFile()
				orig.ContentType = "image/jpeg"

				data, err := tc.codec.Encode(orig)
				require.NoError(t, err)
				got, err := tc.codec.Decode(data)
				require.NoError(t, err)

				assert.Equal(t, orig, got)
			})

			t.Run("PlaceholderDigest", func(t *testing.T) {
				orig := sampleFile()
				orig.Size = 0
				orig.Digests[DigestSHA256] = nil

				data, err := tc.codec.Encode(orig)
				require.NoError(t, err)
				got, err := tc.codec.Decode(data)
				require.NoError(t, err)

				require.Contains(t, got.Digests, DigestSHA256)
				assert.Nil(t, got.Digests[DigestSHA256])
			})

			t.Run("Object", func(t *testing.T) {
				orig := &Descriptor{Type: KindObject, Path: "a", Name: "a", CreatedAt: fixedTime, UpdatedAt: fixedTime}

				data, err := tc.codec.Encode(orig)
				require.NoError(t, err)
				got, err := tc.codec.Decode(data)
				require.NoError(t, err)

				assert.Equal(t, orig, got)
			})

			t.Run("NotAMapping", func(t *testing.T) {
				_, err := tc.codec.Decode([]byte("[1, 2, 3]"))
				assert.ErrorIs(t, err, ErrInvalidDescriptor)
			})

			t.Run("MissingReservedField", func(t *testing.T) {
				_, err := tc.codec.Decode([]byte(`{"type": "file", "path": "x"}`))
				assert.ErrorIs(t, err, ErrInvalidDescriptor)
			})
		})
	}
}

func TestCodecNumbers(t *testing.T) {
	d := sampleFile()
	d.Extra = map[string]any{
		"inode":  int64(9007199254740993),
		"rating": 4,
		"ratio":  0.5,
		"nested": map[string]any{"n": 2, "list": []any{1, 1.5}},
	}

	want := map[string]any{
		"inode":  9007199254740993,
		"rating": 4,
		"ratio":  0.5,
		"nested": map[string]any{"n": 2, "list": []any{1, 1.5}},
	}

	for _, c := range []Codec{JSONCodec{}, YAMLCodec{}} {
		data, err := c.Encode(d)
		require.NoError(t, err)

		got, err := c.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, want, got.Extra, c.Filename())
		assert.Equal(t, int64(3), got.Size, c.Filename())
	}
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		format   string
		filename string
	}{
		{"", JSONFilename},
		{"json", JSONFilename},
		{"JSON", JSONFilename},
		{"yaml", YAMLFilename},
		{"yml", YAMLFilename},
	}
	for _, tt := range tests {
		c, err := NewCodec(tt.format)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.filename, c.Filename())
	}

	_, err := NewCodec("toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
