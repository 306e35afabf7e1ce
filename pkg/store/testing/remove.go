package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// RunRemoveTests covers Remove and RemoveAll.
func (suite *StoreTestSuite) RunRemoveTests(t *testing.T) {
	t.Run("Remove_File", suite.testRemoveFile)
	t.Run("Remove_EmptyDir", suite.testRemoveEmptyDir)
	t.Run("Remove_NonEmptyDir", suite.testRemoveNonEmptyDir)
	t.Run("Remove_NotFound", suite.testRemoveNotFound)
	t.Run("RemoveAll_Tree", suite.testRemoveAllTree)
	t.Run("RemoveAll_File", suite.testRemoveAllFile)
	t.Run("RemoveAll_NotFound", suite.testRemoveAllNotFound)
	t.Run("RemoveAll_PrefixSibling", suite.testRemoveAllPrefixSibling)
}

func (suite *StoreTestSuite) testRemoveFile(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("x"))

	require.NoError(t, s.Remove(testContext(), "f"))
	mustExist(t, s, "f", false)
}

func (suite *StoreTestSuite) testRemoveEmptyDir(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "a/b")

	require.NoError(t, s.Remove(testContext(), "a/b"))
	mustExist(t, s, "a/b", false)
	mustExist(t, s, "a", true)
}

func (suite *StoreTestSuite) testRemoveNonEmptyDir(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "a")
	mustWriteFile(t, s, "a/f", []byte("x"))

	assert.ErrorIs(t, s.Remove(testContext(), "a"), store.ErrNotEmpty)
	mustExist(t, s, "a/f", true)
}

func (suite *StoreTestSuite) testRemoveNotFound(t *testing.T) {
	s := suite.NewStore(t)

	assert.ErrorIs(t, s.Remove(testContext(), "missing"), store.ErrNotFound)
}

func (suite *StoreTestSuite) testRemoveAllTree(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "a/b/c")
	mustWriteFile(t, s, "a/b/c/f", []byte("x"))
	mustWriteFile(t, s, "a/g", []byte("y"))

	require.NoError(t, s.RemoveAll(testContext(), "a"))
	for _, p := range []string{"a", "a/b", "a/b/c", "a/b/c/f", "a/g"} {
		mustExist(t, s, p, false)
	}
}

func (suite *StoreTestSuite) testRemoveAllFile(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("x"))

	require.NoError(t, s.RemoveAll(testContext(), "f"))
	mustExist(t, s, "f", false)
}

func (suite *StoreTestSuite) testRemoveAllNotFound(t *testing.T) {
	s := suite.NewStore(t)

	assert.ErrorIs(t, s.RemoveAll(testContext(), "missing"), store.ErrNotFound)
}

func (suite *StoreTestSuite) testRemoveAllPrefixSibling(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "ab")
	mustMkdirAll(t, s, "a")
	mustWriteFile(t, s, "ab/keep", []byte("x"))

	require.NoError(t, s.RemoveAll(testContext(), "a"))
	mustExist(t, s, "ab/keep", true)
}
