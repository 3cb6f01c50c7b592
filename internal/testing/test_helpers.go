package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eleven-am/genkit/internal/store"
)

// TestStore is a migrated SQLite store in a temporary directory
type TestStore struct {
	*store.Store
	Path string
	t    *testing.T
}

// NewTestStore creates a new store and removes it when the test ends
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "genkit.db")
	s, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, URL: path})
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test store: %v", err)
	}

	return &TestStore{Store: s, Path: path, t: t}
}

// ColumnCount returns how many column rows a table owns
func (ts *TestStore) ColumnCount(tableID int64) int {
	ts.t.Helper()

	var n int
	err := ts.DB().Get(&n, "SELECT COUNT(*) FROM gen_table_column WHERE table_id = ?", tableID)
	if err != nil {
		ts.t.Fatalf("Failed to count columns: %v", err)
	}
	return n
}

// TableExists checks if a table has been imported
func (ts *TestStore) TableExists(tableName string) bool {
	ts.t.Helper()

	var n int
	err := ts.DB().Get(&n, "SELECT COUNT(*) FROM gen_table WHERE table_name = ?", tableName)
	if err != nil {
		ts.t.Fatalf("Failed to look up table: %v", err)
	}
	return n > 0
}

// PostgresURL returns GENKIT_TEST_POSTGRES_URL or skips the test
func PostgresURL(t *testing.T) string {
	t.Helper()

	url := os.Getenv("GENKIT_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("GENKIT_TEST_POSTGRES_URL not set")
	}
	return url
}
