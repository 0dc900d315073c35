package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// InviteRepository handles database operations for family invites
type InviteRepository struct {
	db *database.DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *database.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// CreateInvite persists a new invite token for a family
func (r *InviteRepository) CreateInvite(familyID int64, token string, invitedEmail *string, expiresAt *time.Time) (*models.FamilyInvite, error) {
	query := `
		INSERT INTO family_invites (family_id, token, invited_email, expires_at, accepted)
		VALUES (?, ?, ?, ?, FALSE)
	`
	var expiry interface{}
	if expiresAt != nil {
		utc := expiresAt.UTC()
		expiry = utc
	}

	id, err := r.db.ExecReturningID(query, familyID, token, invitedEmail, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	invite := &models.FamilyInvite{
		ID:           id,
		FamilyID:     familyID,
		Token:        token,
		InvitedEmail: invitedEmail,
		CreatedAt:    time.Now().UTC(),
		Accepted:     false,
	}
	if expiresAt != nil {
		utc := expiresAt.UTC()
		invite.ExpiresAt = &utc
	}
	return invite, nil
}

const inviteColumns = `id, family_id, token, invited_email, created_at, expires_at, accepted`

func scanInvite(row *sql.Row) (*models.FamilyInvite, error) {
	invite := &models.FamilyInvite{}
	err := row.Scan(
		&invite.ID,
		&invite.FamilyID,
		&invite.Token,
		&invite.InvitedEmail,
		&invite.CreatedAt,
		&invite.ExpiresAt,
		&invite.Accepted,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// GetInviteByToken retrieves an invite by its token
func (r *InviteRepository) GetInviteByToken(token string) (*models.FamilyInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM family_invites WHERE token = ?`
	return scanInvite(r.db.QueryRow(query, token))
}

// GetInviteByID retrieves an invite by ID
func (r *InviteRepository) GetInviteByID(id int64) (*models.FamilyInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM family_invites WHERE id = ?`
	return scanInvite(r.db.QueryRow(query, id))
}

// ListFamilyInvites returns all invites issued for a family
func (r *InviteRepository) ListFamilyInvites(familyID int64) ([]models.FamilyInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM family_invites WHERE family_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []models.FamilyInvite
	for rows.Next() {
		var i models.FamilyInvite
		err := rows.Scan(&i.ID, &i.FamilyID, &i.Token, &i.InvitedEmail, &i.CreatedAt, &i.ExpiresAt, &i.Accepted)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, i)
	}
	return invites, rows.Err()
}

// Redeem consumes the invite and inserts the membership atomically.
// The UPDATE claims the invite with an accepted=FALSE guard; the loser
// of a concurrent redemption sees zero rows affected and no membership
// is written. Either both writes commit or neither does.
func (r *InviteRepository) Redeem(inviteID, userID, familyID int64) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE family_invites SET accepted = TRUE WHERE id = ? AND accepted = FALSE",
		inviteID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim invite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check claim: %w", err)
	}
	if affected != 1 {
		return false, nil
	}

	_, err = tx.Exec(
		"INSERT INTO memberships (user_id, family_id) VALUES (?, ?)",
		userID, familyID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return true, nil
}

// DeleteInvite removes an invite
func (r *InviteRepository) DeleteInvite(id int64) error {
	query := "DELETE FROM family_invites WHERE id = ?"
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}

// DeleteConsumedInvitesBefore prunes accepted invites created before cutoff
func (r *InviteRepository) DeleteConsumedInvitesBefore(cutoff time.Time) (int64, error) {
	query := "DELETE FROM family_invites WHERE accepted = TRUE AND created_at < ?"
	result, err := r.db.Exec(query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune invites: %w", err)
	}
	return result.RowsAffected()
}
