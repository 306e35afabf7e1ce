package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "empty is root", in: "", want: ""},
		{name: "slash is root", in: "/", want: ""},
		{name: "leading slash stripped", in: "/a/b", want: "a/b"},
		{name: "trailing slash stripped", in: "a/b/", want: "a/b"},
		{name: "duplicate separators", in: "a//b", want: "a/b"},
		{name: "dot segments", in: "./a/./b", want: "a/b"},
		{name: "case preserved", in: "A/b", want: "A/b"},
		{name: "parent escape", in: "../a", wantErr: true},
		{name: "inner parent", in: "a/../../b", wantErr: true},
		{name: "nul byte", in: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanPath(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "a/b/c", Join("a", "b", "c"))
	assert.Equal(t, "b", Join("", "b"))
	assert.Equal(t, "", Join())

	assert.Equal(t, "c", Base("a/b/c"))
	assert.Equal(t, "", Base(""))

	assert.Equal(t, "a/b", Dir("a/b/c"))
	assert.Equal(t, "", Dir("a"))

	assert.Equal(t, []string{"a", "a/b", "a/b/c"}, Ancestors("a/b/c"))
	assert.Nil(t, Ancestors(""))

	assert.True(t, IsWithin("a/b", "a"))
	assert.True(t, IsWithin("a", "a"))
	assert.False(t, IsWithin("ab", "a"))
	assert.True(t, IsWithin("x", ""))

	assert.Equal(t, "d/b/c", Rebase("a/b/c", "a", "d"))
	assert.Equal(t, "d", Rebase("a", "a", "d"))
}
