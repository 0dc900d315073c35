package models

import (
	"testing"
	"time"
)

func TestFamilyInviteIsExpired(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry never expires", nil, false},
		{"future expiry", &future, false},
		{"past expiry", &past, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invite := &FamilyInvite{ExpiresAt: tt.expiresAt}
			if got := invite.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFamilyInviteIsExpiredNonUTC(t *testing.T) {
	// Expiry stored in a non-UTC location must compare correctly
	loc := time.FixedZone("UTC+10", 10*3600)
	future := time.Now().In(loc).Add(time.Hour)

	invite := &FamilyInvite{ExpiresAt: &future}
	if invite.IsExpired() {
		t.Error("invite with a future expiry in a non-UTC zone should not be expired")
	}

	past := time.Now().In(loc).Add(-time.Hour)
	invite = &FamilyInvite{ExpiresAt: &past}
	if !invite.IsExpired() {
		t.Error("invite with a past expiry in a non-UTC zone should be expired")
	}
}

func TestFamilyInviteIsValid(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	tests := []struct {
		name      string
		accepted  bool
		expiresAt *time.Time
		want      bool
	}{
		{"fresh invite", false, &future, true},
		{"accepted invite", true, &future, false},
		{"expired invite", false, &past, false},
		{"accepted and expired", true, &past, false},
		{"no expiry unaccepted", false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invite := &FamilyInvite{Accepted: tt.accepted, ExpiresAt: tt.expiresAt}
			if got := invite.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionIsExpired(t *testing.T) {
	active := &Session{ExpiresAt: time.Now().UTC().Add(time.Hour)}
	if active.IsExpired() {
		t.Error("session expiring in an hour should not be expired")
	}

	stale := &Session{ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	if !stale.IsExpired() {
		t.Error("session expired a minute ago should be expired")
	}
}

func TestPostIsPrivate(t *testing.T) {
	familyID := int64(3)

	private := &Post{FamilyID: nil}
	if !private.IsPrivate() {
		t.Error("post without a family should be private")
	}

	shared := &Post{FamilyID: &familyID}
	if shared.IsPrivate() {
		t.Error("post with a family should not be private")
	}
}

func TestNotificationData(t *testing.T) {
	n := &Notification{
		Name:        NotificationUnreadMessageCount,
		PayloadJSON: `{"count": 4}`,
	}

	data, err := n.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if data["count"] != float64(4) {
		t.Errorf("count = %v, want 4", data["count"])
	}

	bad := &Notification{PayloadJSON: `{`}
	if _, err := bad.Data(); err == nil {
		t.Error("expected error for malformed payload")
	}
}
