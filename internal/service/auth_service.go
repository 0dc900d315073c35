package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/repository"
	"github.com/christianmesinas/famplan/internal/security"
	"github.com/christianmesinas/famplan/pkg/logger"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailConflict   = errors.New("email already bound to another account")
	ErrInvalidSession  = errors.New("invalid session")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("username must be between 1 and 64 characters")
)

// AuthService resolves identities from the external provider and
// manages login sessions. There are no local credentials; the provider
// subject ("sub") is the canonical identity key.
type AuthService struct {
	userRepo        *repository.UserRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionDuration: sessionDuration,
	}
}

// ResolveIdentity finds or creates the local user for a provider
// identity. The email claim may move between logins; it is adopted
// unless it already belongs to a different sub, which is a conflict
// and mutates nothing.
func (s *AuthService) ResolveIdentity(sub, email, nickname string) (*models.User, error) {
	if sub == "" {
		return nil, fmt.Errorf("identity token carried no subject")
	}
	if email == "" {
		// Some providers omit email depending on scopes
		email = sub + "@noemail.example.com"
	}

	user, err := s.userRepo.GetUserBySub(sub)
	if err != nil {
		return nil, err
	}

	if user != nil {
		if user.Email != email {
			other, err := s.userRepo.GetUserByEmail(email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.Sub != sub {
				return nil, ErrEmailConflict
			}
			if err := s.userRepo.UpdateEmail(user.ID, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
		return user, nil
	}

	other, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if other != nil {
		return nil, ErrEmailConflict
	}

	username, err := s.uniqueUsername(nickname, email)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.CreateUser(sub, username, email)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("username", username).Msg("Created user from identity provider")
	return created, nil
}

// uniqueUsername derives a username from the provider nickname,
// de-duplicating with a numeric suffix.
func (s *AuthService) uniqueUsername(nickname, email string) (string, error) {
	base := strings.TrimSpace(nickname)
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := s.userRepo.UsernameExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// UpdateProfile changes the user's username and about text. A changed
// username must not collide with another account.
func (s *AuthService) UpdateProfile(userID int64, username, aboutMe string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 64 {
		return nil, ErrInvalidUsername
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if username != user.Username {
		taken, err := s.userRepo.UsernameExists(username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	if err := s.userRepo.UpdateProfile(userID, username, aboutMe); err != nil {
		return nil, err
	}
	user.Username = username
	user.AboutMe = aboutMe
	return user, nil
}

// CreateSession opens a login session for the user
func (s *AuthService) CreateSession(userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().UTC().Add(s.sessionDuration)
	return s.userRepo.CreateSession(sessionID, userID, expiresAt)
}

// ValidateSession resolves a session ID to its user. Expired or
// unknown sessions yield ErrInvalidSession.
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.IsExpired() {
		return nil, ErrInvalidSession
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidSession
	}
	return user, nil
}

// Logout deletes the session row
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// TouchLastSeen records request activity for the user
func (s *AuthService) TouchLastSeen(userID int64) {
	if err := s.userRepo.TouchLastSeen(userID, time.Now()); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to update last seen")
	}
}

// CleanupExpiredSessions removes sessions past their expiry
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	return s.userRepo.DeleteExpiredSessions()
}
