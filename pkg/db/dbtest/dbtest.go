// Package dbtest opens migrated in-memory stores for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/japaniel/vocabforge/pkg/db"
)

// New returns a migrated in-memory SQLite store that is closed when the test ends.
func New(t testing.TB) *db.Store {
	t.Helper()
	// A single connection keeps every query on the same in-memory database.
	s, err := db.Open(context.Background(), db.DriverSQLite, ":memory:", db.Options{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}
