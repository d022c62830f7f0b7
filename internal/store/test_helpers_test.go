package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/chipsim/internal/testutil"
)

// createTestStore creates a new store in a temporary directory with
// deterministic revision IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewFixedIDGenerator("rev")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
