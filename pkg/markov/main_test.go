package markov

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new SQLite database file and a Generator for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(tb testing.TB) (*sql.DB, *Generator) {
	tb.Helper()
	dbFile := filepath.Join(tb.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		tb.Fatalf("failed to set up schema: %v", err)
	}

	g, err := NewGenerator(db)
	if err != nil {
		tb.Fatalf("NewGenerator() error = %v", err)
	}
	tb.Cleanup(g.Close)

	return db, g
}

// setupTrained is a convenience helper that also trains the chain.
func setupTrained(tb testing.TB, corpus string) (context.Context, *Generator) {
	tb.Helper()
	_, g := setupTestDB(tb)
	ctx := context.Background()
	if _, err := g.Train(ctx, strings.NewReader(corpus)); err != nil {
		tb.Fatalf("setup: Train() failed: %v", err)
	}
	return ctx, g
}
