package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/pkg/logger"
)

// BackupData is the complete database backup structure
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Users      []UserBackup     `json:"users"`
	Families   []FamilyBackup   `json:"families"`
	Invites    []InviteBackup   `json:"invites"`
	Posts      []PostBackup     `json:"posts"`
	Messages   []MessageBackup  `json:"messages"`
	Followers  []FollowerBackup `json:"followers"`
}

// UserBackup is a user record for backup. Sub is the stable key used
// to rebind rows on import.
type UserBackup struct {
	ID                  int64      `json:"id"`
	Sub                 string     `json:"sub"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	AboutMe             string     `json:"about_me"`
	LastMessageReadTime *time.Time `json:"last_message_read_time"`
	CreatedAt           time.Time  `json:"created_at"`
}

// FamilyBackup is a family with its member subs
type FamilyBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Members   []int64   `json:"member_user_ids"`
}

// InviteBackup is an invite record for backup
type InviteBackup struct {
	FamilyID     int64      `json:"family_id"`
	Token        string     `json:"token"`
	InvitedEmail *string    `json:"invited_email"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Accepted     bool       `json:"accepted"`
}

// PostBackup is a post record for backup
type PostBackup struct {
	Body      string    `json:"body"`
	UserID    int64     `json:"user_id"`
	FamilyID  *int64    `json:"family_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageBackup is a direct message record for backup
type MessageBackup struct {
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowerBackup is a follow edge for backup
type FollowerBackup struct {
	FollowerID int64 `json:"follower_id"`
	FollowedID int64 `json:"followed_id"`
}

// BackupService handles database export and import
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete JSON backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	logger.Info().Msg("Starting database export")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportInvites(backup); err != nil {
		return fmt.Errorf("failed to export invites: %w", err)
	}
	if err := s.exportPosts(backup); err != nil {
		return fmt.Errorf("failed to export posts: %w", err)
	}
	if err := s.exportMessages(backup); err != nil {
		return fmt.Errorf("failed to export messages: %w", err)
	}
	if err := s.exportFollowers(backup); err != nil {
		return fmt.Errorf("failed to export followers: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	logger.Info().
		Int("users", len(backup.Users)).
		Int("families", len(backup.Families)).
		Int("posts", len(backup.Posts)).
		Msg("Export complete")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, sub, username, email, about_me, last_message_read_time, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Sub, &u.Username, &u.Email, &u.AboutMe, &u.LastMessageReadTime, &u.CreatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, created_at FROM families ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Families {
		memberRows, err := s.db.Query(
			"SELECT user_id FROM memberships WHERE family_id = ? ORDER BY joined_at",
			backup.Families[i].ID,
		)
		if err != nil {
			return err
		}
		for memberRows.Next() {
			var userID int64
			if err := memberRows.Scan(&userID); err != nil {
				memberRows.Close()
				return err
			}
			backup.Families[i].Members = append(backup.Families[i].Members, userID)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return err
		}
		memberRows.Close()
	}
	return nil
}

func (s *BackupService) exportInvites(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT family_id, token, invited_email, created_at, expires_at, accepted
		FROM family_invites ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var i InviteBackup
		if err := rows.Scan(&i.FamilyID, &i.Token, &i.InvitedEmail, &i.CreatedAt, &i.ExpiresAt, &i.Accepted); err != nil {
			return err
		}
		backup.Invites = append(backup.Invites, i)
	}
	return rows.Err()
}

func (s *BackupService) exportPosts(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT body, user_id, family_id, created_at, updated_at
		FROM posts ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PostBackup
		if err := rows.Scan(&p.Body, &p.UserID, &p.FamilyID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Posts = append(backup.Posts, p)
	}
	return rows.Err()
}

func (s *BackupService) exportMessages(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT sender_id, recipient_id, body, created_at
		FROM messages ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MessageBackup
		if err := rows.Scan(&m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return err
		}
		backup.Messages = append(backup.Messages, m)
	}
	return rows.Err()
}

func (s *BackupService) exportFollowers(backup *BackupData) error {
	rows, err := s.db.Query("SELECT follower_id, followed_id FROM followers")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FollowerBackup
		if err := rows.Scan(&f.FollowerID, &f.FollowedID); err != nil {
			return err
		}
		backup.Followers = append(backup.Followers, f)
	}
	return rows.Err()
}

// Import restores a JSON backup into the database. Rows get fresh IDs;
// references are remapped through the backup's old IDs. Users are
// matched by sub so repeated imports do not duplicate accounts.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	var backup BackupData
	if err := json.NewDecoder(file).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	logger.Info().Str("version", backup.Version).Msg("Starting database import")

	userIDs := make(map[int64]int64)
	for _, u := range backup.Users {
		var existing int64
		err := s.db.QueryRow("SELECT id FROM users WHERE sub = ?", u.Sub).Scan(&existing)
		if err == nil {
			userIDs[u.ID] = existing
			continue
		}

		newID, err := s.db.ExecReturningID(`
			INSERT INTO users (sub, username, email, about_me, last_message_read_time, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.Sub, u.Username, u.Email, u.AboutMe, u.LastMessageReadTime, u.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.Username, err)
		}
		userIDs[u.ID] = newID
	}

	familyIDs := make(map[int64]int64)
	for _, f := range backup.Families {
		newID, err := s.db.ExecReturningID(
			"INSERT INTO families (name, created_at) VALUES (?, ?)",
			f.Name, f.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import family %s: %w", f.Name, err)
		}
		familyIDs[f.ID] = newID

		for _, oldUserID := range f.Members {
			newUserID, ok := userIDs[oldUserID]
			if !ok {
				continue
			}
			_, err := s.db.Exec(
				"INSERT INTO memberships (user_id, family_id) VALUES (?, ?)",
				newUserID, newID,
			)
			if err != nil {
				return fmt.Errorf("failed to import membership: %w", err)
			}
		}
	}

	for _, i := range backup.Invites {
		familyID, ok := familyIDs[i.FamilyID]
		if !ok {
			continue
		}
		_, err := s.db.Exec(`
			INSERT INTO family_invites (family_id, token, invited_email, created_at, expires_at, accepted)
			VALUES (?, ?, ?, ?, ?, ?)`,
			familyID, i.Token, i.InvitedEmail, i.CreatedAt, i.ExpiresAt, i.Accepted,
		)
		if err != nil {
			return fmt.Errorf("failed to import invite: %w", err)
		}
	}

	for _, p := range backup.Posts {
		userID, ok := userIDs[p.UserID]
		if !ok {
			continue
		}
		var familyID *int64
		if p.FamilyID != nil {
			if mapped, ok := familyIDs[*p.FamilyID]; ok {
				familyID = &mapped
			} else {
				continue
			}
		}
		_, err := s.db.Exec(`
			INSERT INTO posts (body, user_id, family_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			p.Body, userID, familyID, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import post: %w", err)
		}
	}

	for _, m := range backup.Messages {
		senderID, okS := userIDs[m.SenderID]
		recipientID, okR := userIDs[m.RecipientID]
		if !okS || !okR {
			continue
		}
		_, err := s.db.Exec(`
			INSERT INTO messages (sender_id, recipient_id, body, created_at)
			VALUES (?, ?, ?, ?)`,
			senderID, recipientID, m.Body, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import message: %w", err)
		}
	}

	for _, f := range backup.Followers {
		followerID, okA := userIDs[f.FollowerID]
		followedID, okB := userIDs[f.FollowedID]
		if !okA || !okB {
			continue
		}
		_, err := s.db.Exec(
			"INSERT INTO followers (follower_id, followed_id) VALUES (?, ?)",
			followerID, followedID,
		)
		if err != nil {
			return fmt.Errorf("failed to import follower: %w", err)
		}
	}

	logger.Info().Int("users", len(backup.Users)).Int("families", len(backup.Families)).Msg("Import complete")
	return nil
}
