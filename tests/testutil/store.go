package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nhle/mailview/internal/store"
)

// NewTestStore creates a file-backed SQLiteStore in a per-test temp
// directory with all migrations applied, so tests run against the same
// journal mode the application uses. The store is closed when the test
// completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "mailview.db")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("creating test store at %s: %v", dbPath, err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
