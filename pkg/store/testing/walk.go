package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// RunWalkTests covers store.Walk against the backend.
func (suite *StoreTestSuite) RunWalkTests(t *testing.T) {
	t.Run("Walk_Order", suite.testWalkOrder)
	t.Run("Walk_SkipDir", suite.testWalkSkipDir)
	t.Run("Walk_MissingRoot", suite.testWalkMissingRoot)
}

func (suite *StoreTestSuite) testWalkOrder(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "a/b")
	mustWriteFile(t, s, "a/b/f", []byte("x"))
	mustWriteFile(t, s, "a/c", []byte("y"))
	mustWriteFile(t, s, "z", []byte("z"))

	var visited []string
	err := store.Walk(testContext(), s, "", func(p string, info *store.Info, err error) error {
		require.NoError(t, err)
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "a/b", "a/b/f", "a/c", "z"}, visited)
}

func (suite *StoreTestSuite) testWalkSkipDir(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "skip/deep")
	mustMkdirAll(t, s, "keep")
	mustWriteFile(t, s, "keep/f", []byte("x"))

	var visited []string
	err := store.Walk(testContext(), s, "", func(p string, info *store.Info, err error) error {
		require.NoError(t, err)
		if p == "skip" {
			return store.SkipDir
		}
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "keep", "keep/f"}, visited)
}

func (suite *StoreTestSuite) testWalkMissingRoot(t *testing.T) {
	s := suite.NewStore(t)

	err := store.Walk(testContext(), s, "missing", func(p string, info *store.Info, err error) error {
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
