package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// RunDirectoryTests covers Mkdir, MkdirAll and ReadDir.
func (suite *StoreTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("Mkdir_Success", suite.testMkdir)
	t.Run("Mkdir_Exists", suite.testMkdirExists)
	t.Run("Mkdir_MissingParent", suite.testMkdirMissingParent)
	t.Run("MkdirAll_Nested", suite.testMkdirAll)
	t.Run("MkdirAll_Idempotent", suite.testMkdirAllIdempotent)
	t.Run("MkdirAll_ThroughFile", suite.testMkdirAllThroughFile)
	t.Run("ReadDir_Sorted", suite.testReadDirSorted)
	t.Run("ReadDir_Empty", suite.testReadDirEmpty)
	t.Run("ReadDir_NotFound", suite.testReadDirNotFound)
	t.Run("ReadDir_File", suite.testReadDirFile)
}

func (suite *StoreTestSuite) testMkdir(t *testing.T) {
	s := suite.NewStore(t)

	require.NoError(t, s.Mkdir(testContext(), "dir"))
	ok, err := store.IsDir(testContext(), s, "dir")
	require.NoError(t, err)
	assert.True(t, ok)
}

func (suite *StoreTestSuite) testMkdirExists(t *testing.T) {
	s := suite.NewStore(t)
	require.NoError(t, s.Mkdir(testContext(), "dir"))
	mustWriteFile(t, s, "file", []byte("x"))

	assert.ErrorIs(t, s.Mkdir(testContext(), "dir"), store.ErrExists)
	assert.ErrorIs(t, s.Mkdir(testContext(), "file"), store.ErrExists)
}

func (suite *StoreTestSuite) testMkdirMissingParent(t *testing.T) {
	s := suite.NewStore(t)

	assert.ErrorIs(t, s.Mkdir(testContext(), "a/b"), store.ErrNotFound)
	mustExist(t, s, "a", false)
}

func (suite *StoreTestSuite) testMkdirAll(t *testing.T) {
	s := suite.NewStore(t)

	require.NoError(t, s.MkdirAll(testContext(), "a/b/c"))
	for _, p := range []string{"a", "a/b", "a/b/c"} {
		ok, err := store.IsDir(testContext(), s, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
}

func (suite *StoreTestSuite) testMkdirAllIdempotent(t *testing.T) {
	s := suite.NewStore(t)

	require.NoError(t, s.MkdirAll(testContext(), "a/b"))
	require.NoError(t, s.MkdirAll(testContext(), "a/b"))
	require.NoError(t, s.MkdirAll(testContext(), "a"))
	require.NoError(t, s.MkdirAll(testContext(), ""))
}

func (suite *StoreTestSuite) testMkdirAllThroughFile(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("x"))

	assert.ErrorIs(t, s.MkdirAll(testContext(), "f/sub"), store.ErrNotDir)
	assert.ErrorIs(t, s.MkdirAll(testContext(), "f"), store.ErrNotDir)
}

func (suite *StoreTestSuite) testReadDirSorted(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "d/zeta")
	mustWriteFile(t, s, "d/beta", []byte("bb"))
	mustWriteFile(t, s, "d/alpha", []byte("a"))

	entries, err := s.ReadDir(testContext(), "d")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "d/alpha", entries[0].Path)
	assert.Equal(t, int64(1), entries[0].Size)
	assert.Equal(t, "beta", entries[1].Name)
	assert.Equal(t, "zeta", entries[2].Name)
	assert.True(t, entries[2].IsDir)

	root, err := s.ReadDir(testContext(), "")
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "d", root[0].Path)
}

func (suite *StoreTestSuite) testReadDirEmpty(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "empty")

	entries, err := s.ReadDir(testContext(), "empty")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func (suite *StoreTestSuite) testReadDirNotFound(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.ReadDir(testContext(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testReadDirFile(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("x"))

	_, err := s.ReadDir(testContext(), "f")
	assert.ErrorIs(t, err, store.ErrNotDir)
}
