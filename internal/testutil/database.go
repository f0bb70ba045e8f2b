// Package testutil provides dataset fixtures shared by package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Veraticus/grantflow/internal/storage"
)

// SetupTestStore creates an in-memory dataset store holding d's tables.
// It handles migrations and cleanup.
func SetupTestStore(t *testing.T, d *Dataset) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:",
		storage.WithStoreLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if d != nil {
		registry, ledger := d.Tables()
		if err := store.SaveTable(ctx, registry, "testutil"); err != nil {
			t.Fatalf("failed to seed registry: %v", err)
		}
		if err := store.SaveTable(ctx, ledger, "testutil"); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
	}
	return store
}
