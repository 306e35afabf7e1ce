package testing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// RunBasicTests covers file reads, writes and inspection.
func (suite *StoreTestSuite) RunBasicTests(t *testing.T) {
	t.Run("RootExists", suite.testRootExists)
	t.Run("WriteFile_ReadFile", suite.testWriteReadFile)
	t.Run("WriteFile_Overwrite", suite.testWriteOverwrite)
	t.Run("WriteFile_Empty", suite.testWriteEmpty)
	t.Run("WriteFile_Large", suite.testWriteLarge)
	t.Run("WriteFile_MissingParent", suite.testWriteMissingParent)
	t.Run("WriteFile_OnDirectory", suite.testWriteOnDirectory)
	t.Run("ReadFile_NotFound", suite.testReadNotFound)
	t.Run("ReadFile_Directory", suite.testReadDirectory)
	t.Run("Stat_File", suite.testStatFile)
	t.Run("Stat_NotFound", suite.testStatNotFound)
	t.Run("Checksum", suite.testChecksum)
	t.Run("Helpers", suite.testHelpers)
}

func (suite *StoreTestSuite) testRootExists(t *testing.T) {
	s := suite.NewStore(t)
	mustExist(t, s, "", true)

	info, err := s.Stat(testContext(), "")
	require.NoError(t, err)
	assert.True(t, info.IsDir)
}

func (suite *StoreTestSuite) testWriteReadFile(t *testing.T) {
	s := suite.NewStore(t)

	mustWriteFile(t, s, "hello.txt", []byte("Hello, World!"))
	assert.Equal(t, []byte("Hello, World!"), mustReadFile(t, s, "hello.txt"))
	mustExist(t, s, "hello.txt", true)
}

func (suite *StoreTestSuite) testWriteOverwrite(t *testing.T) {
	s := suite.NewStore(t)

	mustWriteFile(t, s, "f", []byte("a much longer first version"))
	mustWriteFile(t, s, "f", []byte("short"))
	assert.Equal(t, []byte("short"), mustReadFile(t, s, "f"))
}

func (suite *StoreTestSuite) testWriteEmpty(t *testing.T) {
	s := suite.NewStore(t)

	mustWriteFile(t, s, "empty", []byte{})
	assert.Empty(t, mustReadFile(t, s, "empty"))

	info, err := s.Stat(testContext(), "empty")
	require.NoError(t, err)
	assert.False(t, info.IsDir)
	assert.Zero(t, info.Size)
}

func (suite *StoreTestSuite) testWriteLarge(t *testing.T) {
	s := suite.NewStore(t)

	data := bytes.Repeat([]byte("0123456789abcdef"), 64*1024)
	mustWriteFile(t, s, "large.bin", data)
	assert.Equal(t, data, mustReadFile(t, s, "large.bin"))
}

func (suite *StoreTestSuite) testWriteMissingParent(t *testing.T) {
	s := suite.NewStore(t)

	err := s.WriteFile(testContext(), "missing/child.txt", []byte("x"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	mustExist(t, s, "missing", false)
}

func (suite *StoreTestSuite) testWriteOnDirectory(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "dir")

	err := s.WriteFile(testContext(), "dir", []byte("x"))
	assert.ErrorIs(t, err, store.ErrIsDir)
}

func (suite *StoreTestSuite) testReadNotFound(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.ReadFile(testContext(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testReadDirectory(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "dir")

	_, err := s.ReadFile(testContext(), "dir")
	assert.ErrorIs(t, err, store.ErrIsDir)
}

func (suite *StoreTestSuite) testStatFile(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "a/b")
	mustWriteFile(t, s, "a/b/c.txt", []byte("12345"))

	info, err := s.Stat(testContext(), "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "c.txt", info.Name)
	assert.Equal(t, "a/b/c.txt", info.Path)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.IsDir)
	if !suite.SkipModTime {
		assert.False(t, info.ModTime.IsZero())
	}

	dir, err := s.Stat(testContext(), "a/b")
	require.NoError(t, err)
	assert.True(t, dir.IsDir)
	assert.Equal(t, "b", dir.Name)
}

func (suite *StoreTestSuite) testStatNotFound(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.Stat(testContext(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
	mustExist(t, s, "ghost", false)
}

func (suite *StoreTestSuite) testChecksum(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "a", []byte("same"))
	mustWriteFile(t, s, "b", []byte("same"))
	mustWriteFile(t, s, "c", []byte("different"))

	sumA, err := s.Checksum(testContext(), "a")
	require.NoError(t, err)
	sumB, err := s.Checksum(testContext(), "b")
	require.NoError(t, err)
	sumC, err := s.Checksum(testContext(), "c")
	require.NoError(t, err)

	assert.NotEmpty(t, sumA)
	assert.Equal(t, sumA, sumB)
	assert.NotEqual(t, sumA, sumC)

	_, err = s.Checksum(testContext(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testHelpers(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "d")
	mustWriteFile(t, s, "d/f", []byte("x"))

	ok, err := store.IsFile(testContext(), s, "d/f")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsDir(testContext(), s, "d")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsFile(testContext(), s, "d")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.IsDir(testContext(), s, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
