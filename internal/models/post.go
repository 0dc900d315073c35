package models

import "time"

// MaxPostLength bounds post and message bodies
const MaxPostLength = 500

// Post is a timeline entry. A nil FamilyID means the post is private
// to its author ("only me").
type Post struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	UserID    int64     `json:"user_id"`
	FamilyID  *int64    `json:"family_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPrivate reports whether the post is visible only to its author
func (p *Post) IsPrivate() bool {
	return p.FamilyID == nil
}

// FeedPost is a post joined with its author's username for display
type FeedPost struct {
	Post
	AuthorUsername string `json:"author_username"`
}

// FamilyPreview pairs a family with its most recent post, for the
// home overview.
type FamilyPreview struct {
	Family     *Family   `json:"family"`
	LatestPost *FeedPost `json:"latest_post,omitempty"`
}
