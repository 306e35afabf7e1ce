// Package memory implements a volatile in-memory store.
package memory

import (
	"github.com/spf13/afero"

	"github.com/marmos91/tulipfs/pkg/store/afs"
)

// Store is a store.Store held entirely in memory.
//
// It is designed for:
//   - Testing and development
//   - Ephemeral repositories
//   - Metadata stores of short lived tools
//
// Data is lost when the store is garbage collected or the process exits.
type Store struct {
	*afs.Store
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{Store: afs.New(afero.NewMemMapFs(), afs.WithName("memory"))}
}
