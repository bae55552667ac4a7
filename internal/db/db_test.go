package db

import (
	"path/filepath"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var count int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'posts', 'settings', 'revoked_tokens')`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("querying tables: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 tables, got %d", count)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.sqlite3")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	var fk int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign keys on, got %d", fk)
	}
}
