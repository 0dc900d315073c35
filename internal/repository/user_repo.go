package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// UserRepository handles database operations for users, sessions and follows
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user resolved from the identity provider
func (r *UserRepository) CreateUser(sub, username, email string) (*models.User, error) {
	query := `
		INSERT INTO users (sub, username, email, about_me)
		VALUES (?, ?, ?, '')
	`
	id, err := r.db.ExecReturningID(query, sub, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Sub:       sub,
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}, nil
}

const userColumns = `id, sub, username, email, about_me, last_seen, last_message_read_time, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Sub,
		&user.Username,
		&user.Email,
		&user.AboutMe,
		&user.LastSeen,
		&user.LastMessageReadTime,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRow(query, id))
}

// GetUserBySub retrieves a user by identity-provider subject
func (r *UserRepository) GetUserBySub(sub string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE sub = ?`
	return scanUser(r.db.QueryRow(query, sub))
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRow(query, email))
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(r.db.QueryRow(query, username))
}

// UsernameExists reports whether a username is already taken
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM users WHERE username = ?"
	if err := r.db.QueryRow(query, username).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// UpdateEmail changes a user's email address
func (r *UserRepository) UpdateEmail(userID int64, email string) error {
	query := "UPDATE users SET email = ? WHERE id = ?"
	if _, err := r.db.Exec(query, email, userID); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}
	return nil
}

// UpdateProfile changes a user's username and about text
func (r *UserRepository) UpdateProfile(userID int64, username, aboutMe string) error {
	query := "UPDATE users SET username = ?, about_me = ? WHERE id = ?"
	if _, err := r.db.Exec(query, username, aboutMe, userID); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// TouchLastSeen records activity for a user
func (r *UserRepository) TouchLastSeen(userID int64, at time.Time) error {
	query := "UPDATE users SET last_seen = ? WHERE id = ?"
	if _, err := r.db.Exec(query, at.UTC(), userID); err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

// SetLastMessageReadTime moves the user's unread-message watermark
func (r *UserRepository) SetLastMessageReadTime(userID int64, at time.Time) error {
	query := "UPDATE users SET last_message_read_time = ? WHERE id = ?"
	if _, err := r.db.Exec(query, at.UTC(), userID); err != nil {
		return fmt.Errorf("failed to update read watermark: %w", err)
	}
	return nil
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt.UTC()); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	if _, err := r.db.Exec(query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry
func (r *UserRepository) DeleteExpiredSessions() (int64, error) {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	result, err := r.db.Exec(query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Follow records that follower follows followed. Idempotent.
func (r *UserRepository) Follow(followerID, followedID int64) error {
	exists, err := r.IsFollowing(followerID, followedID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	query := "INSERT INTO followers (follower_id, followed_id) VALUES (?, ?)"
	if _, err := r.db.Exec(query, followerID, followedID); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

// Unfollow removes a follow edge. Idempotent.
func (r *UserRepository) Unfollow(followerID, followedID int64) error {
	query := "DELETE FROM followers WHERE follower_id = ? AND followed_id = ?"
	if _, err := r.db.Exec(query, followerID, followedID); err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}

// IsFollowing reports whether follower follows followed
func (r *UserRepository) IsFollowing(followerID, followedID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM followers WHERE follower_id = ? AND followed_id = ?"
	if err := r.db.QueryRow(query, followerID, followedID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// FollowerCount returns how many users follow the given user
func (r *UserRepository) FollowerCount(userID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM followers WHERE followed_id = ?"
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

// FollowingCount returns how many users the given user follows
func (r *UserRepository) FollowingCount(userID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM followers WHERE follower_id = ?"
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}
