package repository

import (
	"path/filepath"
	"testing"

	"github.com/christianmesinas/famplan/internal/database"
)

// newTestDB opens a throwaway sqlite database with the real migrations
// applied. Tests using it are skipped in short mode.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// seedUser creates a user with deterministic identity fields
func seedUser(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()
	repo := NewUserRepository(db)
	user, err := repo.CreateUser("sub-"+name, name, name+"@example.com")
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	return user.ID
}

// seedFamily creates a family owned by the given user
func seedFamily(t *testing.T, db *database.DB, name string, creatorID int64) int64 {
	t.Helper()
	repo := NewFamilyRepository(db)
	family, err := repo.CreateFamily(name, creatorID)
	if err != nil {
		t.Fatalf("failed to seed family %s: %v", name, err)
	}
	return family.ID
}
