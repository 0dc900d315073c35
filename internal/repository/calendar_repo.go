package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// CalendarRepository handles database operations for calendar credentials
type CalendarRepository struct {
	db *database.DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db *database.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// SaveCredentials stores or replaces the user's credential bundle.
// One row per user; reconnecting overwrites the previous bundle.
func (r *CalendarRepository) SaveCredentials(c *models.CalendarCredentials) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM calendar_credentials WHERE user_id = ?", c.UserID)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO calendar_credentials
			(user_id, access_token, refresh_token, token_uri, client_id, client_secret, scopes, expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.AccessToken, c.RefreshToken, c.TokenURI, c.ClientID, c.ClientSecret, c.Scopes, c.Expiry,
	)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}
	return nil
}

// GetCredentials retrieves the user's credential bundle, or nil when
// the calendar is not connected.
func (r *CalendarRepository) GetCredentials(userID int64) (*models.CalendarCredentials, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, token_uri, client_id, client_secret, scopes, expiry
		FROM calendar_credentials
		WHERE user_id = ?
	`
	c := &models.CalendarCredentials{}
	err := r.db.QueryRow(query, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.AccessToken,
		&c.RefreshToken,
		&c.TokenURI,
		&c.ClientID,
		&c.ClientSecret,
		&c.Scopes,
		&c.Expiry,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return c, nil
}

// UpdateToken refreshes the stored access token and expiry after the
// oauth2 transport rotates it.
func (r *CalendarRepository) UpdateToken(userID int64, accessToken, refreshToken string, expiry *time.Time) error {
	query := `
		UPDATE calendar_credentials
		SET access_token = ?, refresh_token = ?, expiry = ?
		WHERE user_id = ?
	`
	if _, err := r.db.Exec(query, accessToken, refreshToken, expiry, userID); err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	return nil
}

// DeleteCredentials disconnects the user's calendar
func (r *CalendarRepository) DeleteCredentials(userID int64) error {
	query := "DELETE FROM calendar_credentials WHERE user_id = ?"
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
