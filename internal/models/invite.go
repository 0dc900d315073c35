package models

import "time"

// FamilyInvite is a single-use token granting membership of one family.
// A nil ExpiresAt means the invite never expires.
type FamilyInvite struct {
	ID           int64      `json:"id"`
	FamilyID     int64      `json:"family_id"`
	Token        string     `json:"token"`
	InvitedEmail *string    `json:"invited_email,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Accepted     bool       `json:"accepted"`
}

// IsExpired reports whether the invite is past its expiry.
// Timestamps are compared in UTC regardless of how the driver scanned them.
func (i *FamilyInvite) IsExpired() bool {
	if i.ExpiresAt == nil {
		return false
	}
	return time.Now().UTC().After(i.ExpiresAt.UTC())
}

// IsUsed reports whether the invite has already been redeemed
func (i *FamilyInvite) IsUsed() bool {
	return i.Accepted
}

// IsValid reports whether the invite can still be redeemed
func (i *FamilyInvite) IsValid() bool {
	return !i.IsUsed() && !i.IsExpired()
}
