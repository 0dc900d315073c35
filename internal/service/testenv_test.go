package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/repository"
)

// testEnv bundles services wired against a throwaway sqlite database
type testEnv struct {
	db         *database.DB
	userRepo   *repository.UserRepository
	familyRepo *repository.FamilyRepository
	inviteRepo *repository.InviteRepository
	auth       *AuthService
	family     *FamilyService
	invite     *InviteService
	feed       *FeedService
	message    *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
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

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	postRepo := repository.NewPostRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Disabled email service: no from address configured
	emailSvc, err := NewEmailService("", "", "", "http://localhost:8080")
	if err != nil {
		t.Fatalf("failed to create email service: %v", err)
	}

	familySvc := NewFamilyService(familyRepo)

	return &testEnv{
		db:         db,
		userRepo:   userRepo,
		familyRepo: familyRepo,
		inviteRepo: inviteRepo,
		auth:       NewAuthService(userRepo, 24*time.Hour),
		family:     familySvc,
		invite:     NewInviteService(inviteRepo, familyRepo, familySvc, emailSvc, 7*24*time.Hour),
		feed:       NewFeedService(postRepo, userRepo, familyRepo, familySvc, 3),
		message:    NewMessageService(messageRepo, notificationRepo, userRepo, 25),
	}
}

func (e *testEnv) user(t *testing.T, name string) int64 {
	t.Helper()
	user, err := e.auth.ResolveIdentity("sub-"+name, name+"@example.com", name)
	if err != nil {
		t.Fatalf("failed to resolve user %s: %v", name, err)
	}
	return user.ID
}

func (e *testEnv) familyOf(t *testing.T, name string, creatorID int64) int64 {
	t.Helper()
	family, err := e.family.CreateFamily(name, creatorID)
	if err != nil {
		t.Fatalf("failed to create family %s: %v", name, err)
	}
	return family.ID
}
