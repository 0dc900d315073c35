package models

import "time"

// User is an account resolved from the external identity provider.
// Sub is the provider's stable subject identifier; it is the canonical key.
type User struct {
	ID                  int64      `json:"id"`
	Sub                 string     `json:"-"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	AboutMe             string     `json:"about_me"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
	LastMessageReadTime *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Session is a server-side login session keyed by a uuid
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session is past its expiry
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt.UTC())
}

// Profile is a user's public view plus follow counts
type Profile struct {
	User           *User `json:"user"`
	FollowerCount  int   `json:"follower_count"`
	FollowingCount int   `json:"following_count"`
	PostCount      int   `json:"post_count"`
}
