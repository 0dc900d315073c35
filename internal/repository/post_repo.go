package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *database.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts a post. familyID nil marks the post private to
// its author.
func (r *PostRepository) CreatePost(userID int64, body string, familyID *int64) (*models.Post, error) {
	query := `
		INSERT INTO posts (body, user_id, family_id)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, body, userID, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return &models.Post{
		ID:        id,
		Body:      body,
		UserID:    userID,
		FamilyID:  familyID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// GetPostByID retrieves a post by ID
func (r *PostRepository) GetPostByID(id int64) (*models.Post, error) {
	query := `
		SELECT id, body, user_id, family_id, created_at, updated_at
		FROM posts
		WHERE id = ?
	`
	post := &models.Post{}
	err := r.db.QueryRow(query, id).Scan(
		&post.ID,
		&post.Body,
		&post.UserID,
		&post.FamilyID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// UpdatePost changes a post's body
func (r *PostRepository) UpdatePost(id int64, body string) error {
	query := "UPDATE posts SET body = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, body, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// DeletePost removes a post
func (r *PostRepository) DeletePost(id int64) error {
	query := "DELETE FROM posts WHERE id = ?"
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// CountUserPosts returns the number of posts by a user
func (r *PostRepository) CountUserPosts(userID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM posts WHERE user_id = ?"
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

const feedPostColumns = `p.id, p.body, p.user_id, p.family_id, p.created_at, p.updated_at, u.username`

func (r *PostRepository) queryFeedPosts(query string, args ...interface{}) ([]models.FeedPost, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.FeedPost
	for rows.Next() {
		var p models.FeedPost
		err := rows.Scan(&p.ID, &p.Body, &p.UserID, &p.FamilyID, &p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// FamilyFeedPage returns one reverse-chronological page of a family's
// feed as seen by viewerID: the family's shared posts plus the viewer's
// own private posts. limit rows are requested; callers pass pageSize+1
// to detect a following page.
func (r *PostRepository) FamilyFeedPage(familyID, viewerID int64, limit, offset int) ([]models.FeedPost, error) {
	query := `
		SELECT ` + feedPostColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.family_id = ? OR (p.user_id = ? AND p.family_id IS NULL)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`
	return r.queryFeedPosts(query, familyID, viewerID, limit, offset)
}

// LatestFamilyPost returns the single most recent post in a family, or
// nil when the family has none.
func (r *PostRepository) LatestFamilyPost(familyID int64) (*models.FeedPost, error) {
	query := `
		SELECT ` + feedPostColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.family_id = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT 1
	`
	p := &models.FeedPost{}
	err := r.db.QueryRow(query, familyID).Scan(
		&p.ID, &p.Body, &p.UserID, &p.FamilyID, &p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest post: %w", err)
	}
	return p, nil
}

// ExplorePage returns one page of all shared posts across families.
// Private posts never appear here.
func (r *PostRepository) ExplorePage(limit, offset int) ([]models.FeedPost, error) {
	query := `
		SELECT ` + feedPostColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.family_id IS NOT NULL
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`
	return r.queryFeedPosts(query, limit, offset)
}

// UserPostsPage returns one page of a user's posts as seen by viewerID.
// Private posts appear only in the author's own view.
func (r *PostRepository) UserPostsPage(userID, viewerID int64, limit, offset int) ([]models.FeedPost, error) {
	query := `
		SELECT ` + feedPostColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ?
		  AND (p.family_id IS NOT NULL OR p.user_id = ?)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`
	return r.queryFeedPosts(query, userID, viewerID, limit, offset)
}

// FollowingFeedPage returns one page of posts by users the viewer
// follows plus the viewer's own posts. Other users' private posts are
// excluded.
func (r *PostRepository) FollowingFeedPage(viewerID int64, limit, offset int) ([]models.FeedPost, error) {
	query := `
		SELECT ` + feedPostColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE (p.user_id = ?
		   OR p.user_id IN (SELECT followed_id FROM followers WHERE follower_id = ?))
		  AND (p.family_id IS NOT NULL OR p.user_id = ?)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`
	return r.queryFeedPosts(query, viewerID, viewerID, viewerID, limit, offset)
}
