package service

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveIdentityCreatesUser(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.ResolveIdentity("auth0|1", "alice@example.com", "alice")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}

	// Same sub resolves to the same user
	again, err := env.auth.ResolveIdentity("auth0|1", "alice@example.com", "alice")
	if err != nil {
		t.Fatalf("second ResolveIdentity() error = %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("resolved to user %d, want %d", again.ID, user.ID)
	}
}

func TestResolveIdentityUsernameDeDup(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.auth.ResolveIdentity("auth0|1", "a@example.com", "sam")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	second, err := env.auth.ResolveIdentity("auth0|2", "b@example.com", "sam")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}

	if first.Username != "sam" {
		t.Errorf("first username = %q, want sam", first.Username)
	}
	if second.Username != "sam2" {
		t.Errorf("second username = %q, want sam2", second.Username)
	}
}

func TestResolveIdentityEmailConflict(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.ResolveIdentity("auth0|a", "shared@example.com", "alice"); err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}

	// New sub claiming an email owned by another sub
	_, err := env.auth.ResolveIdentity("auth0|b", "shared@example.com", "bob")
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("ResolveIdentity() error = %v, want ErrEmailConflict", err)
	}

	// The conflicting login must not have mutated the original account
	original, err := env.userRepo.GetUserBySub("auth0|a")
	if err != nil {
		t.Fatalf("GetUserBySub() error = %v", err)
	}
	if original.Email != "shared@example.com" {
		t.Errorf("original email = %q, want unchanged", original.Email)
	}
	ghost, err := env.userRepo.GetUserBySub("auth0|b")
	if err != nil {
		t.Fatalf("GetUserBySub() error = %v", err)
	}
	if ghost != nil {
		t.Error("conflicting identity must not create a user")
	}
}

func TestResolveIdentityEmailChangeConflict(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.ResolveIdentity("auth0|a", "a@example.com", "alice"); err != nil {
		t.Fatalf("ResolveIdentity(a) error = %v", err)
	}
	if _, err := env.auth.ResolveIdentity("auth0|b", "b@example.com", "bob"); err != nil {
		t.Fatalf("ResolveIdentity(b) error = %v", err)
	}

	// Sub a's provider email moved to one already owned by sub b
	_, err := env.auth.ResolveIdentity("auth0|a", "b@example.com", "alice")
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("ResolveIdentity() error = %v, want ErrEmailConflict", err)
	}

	user, err := env.userRepo.GetUserBySub("auth0|a")
	if err != nil {
		t.Fatalf("GetUserBySub() error = %v", err)
	}
	if user.Email != "a@example.com" {
		t.Errorf("email = %q, conflict must not mutate", user.Email)
	}
}

func TestResolveIdentityAdoptsNewEmail(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.ResolveIdentity("auth0|a", "old@example.com", "alice"); err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}

	user, err := env.auth.ResolveIdentity("auth0|a", "new@example.com", "alice")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if user.Email != "new@example.com" {
		t.Errorf("email = %q, want the new provider email", user.Email)
	}
}

func TestResolveIdentityFallbackEmail(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.ResolveIdentity("auth0|noemail", "", "carol")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if user.Email != "auth0|noemail@noemail.example.com" {
		t.Errorf("email = %q, want the synthesized fallback", user.Email)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	updated, err := env.auth.UpdateProfile(alice, "alice_m", "likes hiking")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Username != "alice_m" || updated.AboutMe != "likes hiking" {
		t.Errorf("updated = %q/%q, want alice_m/likes hiking", updated.Username, updated.AboutMe)
	}

	// The edit must be persisted
	stored, err := env.userRepo.GetUserByID(alice)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.Username != "alice_m" || stored.AboutMe != "likes hiking" {
		t.Errorf("stored = %q/%q, want alice_m/likes hiking", stored.Username, stored.AboutMe)
	}
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	env.user(t, "bob")

	_, err := env.auth.UpdateProfile(alice, "bob", "")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("UpdateProfile() error = %v, want ErrUsernameTaken", err)
	}

	stored, err := env.userRepo.GetUserByID(alice)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.Username != "alice" {
		t.Errorf("username = %q, conflict must not mutate", stored.Username)
	}
}

func TestUpdateProfileKeepingOwnUsername(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	// Same username is not a collision with itself
	updated, err := env.auth.UpdateProfile(alice, "alice", "new about text")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.AboutMe != "new about text" {
		t.Errorf("about = %q, want new about text", updated.AboutMe)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	tests := []string{"", "   ", strings.Repeat("x", 65)}
	for _, username := range tests {
		if _, err := env.auth.UpdateProfile(alice, username, ""); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("UpdateProfile(%q) error = %v, want ErrInvalidUsername", username, err)
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	session, err := env.auth.CreateSession(alice)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	user, err := env.auth.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if user.ID != alice {
		t.Errorf("session resolved to user %d, want %d", user.ID, alice)
	}

	if err := env.auth.Logout(session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := env.auth.ValidateSession(session.ID); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("ValidateSession() after logout error = %v, want ErrInvalidSession", err)
	}
}
