package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// StoreTestSuite is a conformance suite for store.Store implementations.
// It tests the interface contract, not implementation details, making it
// reusable across backends (memory, fs, badger, S3).
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &storetest.StoreTestSuite{
//	        NewStore: func(t *testing.T) store.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh, empty, writable store for each test.
	NewStore func(t *testing.T) store.Store

	// SkipModTime disables assertions on Info.ModTime for backends that do
	// not track it for directories.
	SkipModTime bool
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("BasicOperations", suite.RunBasicTests)
	t.Run("DirectoryOperations", suite.RunDirectoryTests)
	t.Run("RemoveOperations", suite.RunRemoveTests)
	t.Run("RelocationOperations", suite.RunRelocationTests)
	t.Run("OpenOperations", suite.RunOpenTests)
	t.Run("Walk", suite.RunWalkTests)
}

func testContext() context.Context {
	return context.Background()
}

func mustWriteFile(t *testing.T, s store.Store, p string, data []byte) {
	t.Helper()
	require.NoError(t, s.WriteFile(testContext(), p, data))
}

func mustMkdirAll(t *testing.T, s store.Store, p string) {
	t.Helper()
	require.NoError(t, s.MkdirAll(testContext(), p))
}

func mustReadFile(t *testing.T, s store.Store, p string) []byte {
	t.Helper()
	data, err := s.ReadFile(testContext(), p)
	require.NoError(t, err)
	return data
}

func mustExist(t *testing.T, s store.Store, p string, want bool) {
	t.Helper()
	ok, err := s.Exists(testContext(), p)
	require.NoError(t, err)
	require.Equal(t, want, ok, "exists(%q)", p)
}
