package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// RunRelocationTests covers Copy and Move.
func (suite *StoreTestSuite) RunRelocationTests(t *testing.T) {
	t.Run("Copy_File", suite.testCopyFile)
	t.Run("Copy_Tree", suite.testCopyTree)
	t.Run("Copy_DestinationExists", suite.testCopyDestinationExists)
	t.Run("Copy_SourceMissing", suite.testCopySourceMissing)
	t.Run("Copy_IntoItself", suite.testCopyIntoItself)
	t.Run("Move_File", suite.testMoveFile)
	t.Run("Move_Tree", suite.testMoveTree)
	t.Run("Move_MissingParent", suite.testMoveMissingParent)
}

func (suite *StoreTestSuite) testCopyFile(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "src", []byte("payload"))

	require.NoError(t, s.Copy(testContext(), "src", "dst"))
	assert.Equal(t, []byte("payload"), mustReadFile(t, s, "src"))
	assert.Equal(t, []byte("payload"), mustReadFile(t, s, "dst"))
}

func (suite *StoreTestSuite) testCopyTree(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "src/sub/empty")
	mustWriteFile(t, s, "src/a", []byte("A"))
	mustWriteFile(t, s, "src/sub/b", []byte("B"))

	require.NoError(t, s.Copy(testContext(), "src", "dst"))
	assert.Equal(t, []byte("A"), mustReadFile(t, s, "dst/a"))
	assert.Equal(t, []byte("B"), mustReadFile(t, s, "dst/sub/b"))
	ok, err := store.IsDir(testContext(), s, "dst/sub/empty")
	require.NoError(t, err)
	assert.True(t, ok)
	mustExist(t, s, "src/sub/b", true)
}

func (suite *StoreTestSuite) testCopyDestinationExists(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "src", []byte("new"))
	mustWriteFile(t, s, "dst", []byte("old"))

	assert.ErrorIs(t, s.Copy(testContext(), "src", "dst"), store.ErrExists)
	assert.Equal(t, []byte("old"), mustReadFile(t, s, "dst"))
}

func (suite *StoreTestSuite) testCopySourceMissing(t *testing.T) {
	s := suite.NewStore(t)

	assert.ErrorIs(t, s.Copy(testContext(), "missing", "dst"), store.ErrNotFound)
	mustExist(t, s, "dst", false)
}

func (suite *StoreTestSuite) testCopyIntoItself(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "a")

	assert.ErrorIs(t, s.Copy(testContext(), "a", "a/b"), store.ErrInvalidPath)
}

func (suite *StoreTestSuite) testMoveFile(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "dir")
	mustWriteFile(t, s, "src", []byte("payload"))

	require.NoError(t, s.Move(testContext(), "src", "dir/dst"))
	mustExist(t, s, "src", false)
	assert.Equal(t, []byte("payload"), mustReadFile(t, s, "dir/dst"))
}

func (suite *StoreTestSuite) testMoveTree(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "src/sub")
	mustWriteFile(t, s, "src/sub/f", []byte("F"))

	require.NoError(t, s.Move(testContext(), "src", "dst"))
	mustExist(t, s, "src", false)
	mustExist(t, s, "src/sub/f", false)
	assert.Equal(t, []byte("F"), mustReadFile(t, s, "dst/sub/f"))
}

func (suite *StoreTestSuite) testMoveMissingParent(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "src", []byte("x"))

	assert.ErrorIs(t, s.Move(testContext(), "src", "nowhere/dst"), store.ErrNotFound)
	mustExist(t, s, "src", true)
}
