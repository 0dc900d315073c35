package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/models"
)

// FamilyRepository handles database operations for families and memberships
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily inserts a family and the creator's membership in one transaction
func (r *FamilyRepository) CreateFamily(name string, creatorID int64) (*models.Family, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	familyID, err := tx.ExecReturningID(
		"INSERT INTO families (name) VALUES (?)",
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO memberships (user_id, family_id) VALUES (?, ?)",
		creatorID, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Family{
		ID:        familyID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(id int64) (*models.Family, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM families
		WHERE id = ?
	`
	family := &models.Family{}
	err := r.db.QueryRow(query, id).Scan(
		&family.ID,
		&family.Name,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// RenameFamily updates a family's name
func (r *FamilyRepository) RenameFamily(id int64, name string) error {
	query := "UPDATE families SET name = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, name, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to rename family: %w", err)
	}
	return nil
}

// DeleteFamily removes a family. Memberships, invites and family posts
// cascade at the schema level.
func (r *FamilyRepository) DeleteFamily(id int64) error {
	query := "DELETE FROM families WHERE id = ?"
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

// ListUserFamilies returns all families the user belongs to
func (r *FamilyRepository) ListUserFamilies(userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.created_at, f.updated_at
		FROM families f
		JOIN memberships m ON m.family_id = f.id
		WHERE m.user_id = ?
		ORDER BY f.name
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

// ListMembers returns all memberships of a family joined with user info
func (r *FamilyRepository) ListMembers(familyID int64) ([]models.FamilyMember, error) {
	query := `
		SELECT m.id, m.user_id, m.family_id, m.joined_at, u.username, u.email
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.family_id = ?
		ORDER BY m.joined_at
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	for rows.Next() {
		var m models.FamilyMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.FamilyID, &m.JoinedAt, &m.Username, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// IsMember reports whether the user belongs to the family
func (r *FamilyRepository) IsMember(userID, familyID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM memberships WHERE user_id = ? AND family_id = ?"
	if err := r.db.QueryRow(query, userID, familyID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// AddMember inserts a membership row. The UNIQUE(user_id, family_id)
// constraint rejects duplicates.
func (r *FamilyRepository) AddMember(userID, familyID int64) error {
	query := "INSERT INTO memberships (user_id, family_id) VALUES (?, ?)"
	if _, err := r.db.Exec(query, userID, familyID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row and reports whether one existed
func (r *FamilyRepository) RemoveMember(userID, familyID int64) (bool, error) {
	query := "DELETE FROM memberships WHERE user_id = ? AND family_id = ?"
	result, err := r.db.Exec(query, userID, familyID)
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check removal: %w", err)
	}
	return affected > 0, nil
}
