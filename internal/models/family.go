package models

import "time"

// Family is a group of users sharing a feed and calendar
type Family struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership links a user to a family. A user holds at most one
// membership per family.
type Membership struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	FamilyID int64     `json:"family_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// FamilyMember is a membership joined with the member's user record
type FamilyMember struct {
	Membership
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FamilyWithMembers bundles a family with its member list
type FamilyWithMembers struct {
	Family  *Family        `json:"family"`
	Members []FamilyMember `json:"members"`
}
