package database

import (
	"path/filepath"
	"testing"
)

func TestMigrationsAndExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Running migrations twice must be a no-op
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}

	id, err := db.ExecReturningID(
		"INSERT INTO users (sub, username, email) VALUES (?, ?, ?)",
		"sub-1", "alice", "alice@example.com",
	)
	if err != nil {
		t.Fatalf("ExecReturningID() error = %v", err)
	}
	if id == 0 {
		t.Error("ExecReturningID() returned 0")
	}

	var username string
	if err := db.QueryRow("SELECT username FROM users WHERE id = ?", id).Scan(&username); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want alice", username)
	}
}

func TestTransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := tx.ExecReturningID(
		"INSERT INTO users (sub, username, email) VALUES (?, ?, ?)",
		"sub-2", "bob", "bob@example.com",
	); err != nil {
		t.Fatalf("insert in tx error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE sub = ?", "sub-2").Scan(&count); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if count != 0 {
		t.Error("rolled-back insert should not be visible")
	}
}
