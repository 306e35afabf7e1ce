package testing

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tulipfs/pkg/store"
)

// RunOpenTests covers Open in every mode.
func (suite *StoreTestSuite) RunOpenTests(t *testing.T) {
	t.Run("Open_Read", suite.testOpenRead)
	t.Run("Open_ReadNotFound", suite.testOpenReadNotFound)
	t.Run("Open_Directory", suite.testOpenDirectory)
	t.Run("Open_WriteCreates", suite.testOpenWriteCreates)
	t.Run("Open_WriteTruncates", suite.testOpenWriteTruncates)
	t.Run("Open_Append", suite.testOpenAppend)
	t.Run("Open_Update", suite.testOpenUpdate)
	t.Run("Open_CreateNewExisting", suite.testOpenCreateNewExisting)
	t.Run("Open_WriteMissingParent", suite.testOpenWriteMissingParent)
}

func (suite *StoreTestSuite) testOpenRead(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("read me"))

	f, err := s.Open(testContext(), "f", store.ModeRead)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, "f", f.Name())
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "read me", string(data))
}

func (suite *StoreTestSuite) testOpenReadNotFound(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.Open(testContext(), "missing", store.ModeRead)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testOpenDirectory(t *testing.T) {
	s := suite.NewStore(t)
	mustMkdirAll(t, s, "d")

	_, err := s.Open(testContext(), "d", store.ModeRead)
	assert.ErrorIs(t, err, store.ErrIsDir)
}

func (suite *StoreTestSuite) testOpenWriteCreates(t *testing.T) {
	s := suite.NewStore(t)

	f, err := s.Open(testContext(), "new", store.ModeWrite)
	require.NoError(t, err)
	_, err = io.WriteString(f, "streamed")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "streamed", string(mustReadFile(t, s, "new")))
}

func (suite *StoreTestSuite) testOpenWriteTruncates(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("long original content"))

	f, err := s.Open(testContext(), "f", store.ModeWrite)
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "new", string(mustReadFile(t, s, "f")))
}

func (suite *StoreTestSuite) testOpenAppend(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "log", []byte("one\n"))

	f, err := s.Open(testContext(), "log", store.ModeAppend)
	require.NoError(t, err)
	_, err = f.Write([]byte("two\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "one\ntwo\n", string(mustReadFile(t, s, "log")))
}

func (suite *StoreTestSuite) testOpenUpdate(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("abcdef"))

	f, err := s.Open(testContext(), "f", store.ModeUpdate)
	require.NoError(t, err)
	_, err = f.Seek(3, io.SeekStart)
	require.NoError(t, err)
	_, err = f.Write([]byte("XYZ"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "abcXYZ", string(mustReadFile(t, s, "f")))

	_, err = s.Open(testContext(), "missing", store.ModeUpdate)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testOpenCreateNewExisting(t *testing.T) {
	s := suite.NewStore(t)
	mustWriteFile(t, s, "f", []byte("x"))

	_, err := s.Open(testContext(), "f", store.ModeCreateNew)
	assert.ErrorIs(t, err, store.ErrExists)
}

func (suite *StoreTestSuite) testOpenWriteMissingParent(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.Open(testContext(), "missing/f", store.ModeWrite)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
