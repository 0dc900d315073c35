package service

import (
	"context"
	"errors"
	"time"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/repository"
	"github.com/christianmesinas/famplan/internal/security"
	"github.com/christianmesinas/famplan/pkg/logger"
)

var (
	ErrInviteNotFound    = errors.New("invite not found")
	ErrInviteExpired     = errors.New("invite has expired")
	ErrInviteAlreadyUsed = errors.New("invite has already been used")
)

// IssuedInvite is the result of issuing an invite, including whether
// the notification email actually went out.
type IssuedInvite struct {
	Invite    *models.FamilyInvite `json:"invite"`
	EmailSent bool                 `json:"email_sent"`
	Warning   string               `json:"warning,omitempty"`
}

// InviteService issues and redeems single-use family invite tokens
type InviteService struct {
	inviteRepo *repository.InviteRepository
	familyRepo *repository.FamilyRepository
	familySvc  *FamilyService
	emailSvc   *EmailService
	inviteTTL  time.Duration
}

// NewInviteService creates a new invite service
func NewInviteService(inviteRepo *repository.InviteRepository, familyRepo *repository.FamilyRepository, familySvc *FamilyService, emailSvc *EmailService, inviteTTL time.Duration) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		familyRepo: familyRepo,
		familySvc:  familySvc,
		emailSvc:   emailSvc,
		inviteTTL:  inviteTTL,
	}
}

// Issue creates an invite token for a family. Member-only. When an
// invited email is given the invite is mailed out; a send failure does
// not void the invite but is logged and reported to the caller.
func (s *InviteService) Issue(ctx context.Context, familyID, actorID int64, invitedEmail *string) (*IssuedInvite, error) {
	if err := s.familySvc.VerifyAccess(actorID, familyID); err != nil {
		return nil, err
	}

	token, err := security.GenerateInviteToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(s.inviteTTL)
	invite, err := s.inviteRepo.CreateInvite(familyID, token, invitedEmail, &expiresAt)
	if err != nil {
		return nil, err
	}

	issued := &IssuedInvite{Invite: invite}
	if invitedEmail != nil && *invitedEmail != "" {
		family, err := s.familyRepo.GetFamilyByID(familyID)
		if err != nil {
			return nil, err
		}
		if err := s.emailSvc.SendFamilyInviteEmail(ctx, *invitedEmail, family.Name, token); err != nil {
			logger.Error().Err(err).Str("to", *invitedEmail).Msg("Failed to send invite email")
			issued.Warning = "invite created but the invitation email could not be sent"
		} else {
			issued.EmailSent = s.emailSvc.IsEnabled()
		}
	}
	return issued, nil
}

// Redeem consumes an invite token and adds the user to its family.
// Checked in order: unknown token, expiry, prior use, existing
// membership; then the claim and membership insert happen atomically.
func (s *InviteService) Redeem(token string, userID int64) (*models.Family, error) {
	invite, err := s.inviteRepo.GetInviteByToken(token)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	if invite.IsExpired() {
		return nil, ErrInviteExpired
	}
	if invite.IsUsed() {
		return nil, ErrInviteAlreadyUsed
	}

	isMember, err := s.familyRepo.IsMember(userID, invite.FamilyID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	claimed, err := s.inviteRepo.Redeem(invite.ID, userID, invite.FamilyID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost a concurrent redemption race
		return nil, ErrInviteAlreadyUsed
	}

	return s.familyRepo.GetFamilyByID(invite.FamilyID)
}

// ListFamilyInvites returns a family's invites. Member-only.
func (s *InviteService) ListFamilyInvites(familyID, actorID int64) ([]models.FamilyInvite, error) {
	if err := s.familySvc.VerifyAccess(actorID, familyID); err != nil {
		return nil, err
	}
	return s.inviteRepo.ListFamilyInvites(familyID)
}

// Revoke deletes an unaccepted invite. Member-only.
func (s *InviteService) Revoke(inviteID, actorID int64) error {
	invite, err := s.inviteRepo.GetInviteByID(inviteID)
	if err != nil {
		return err
	}
	if invite == nil {
		return ErrInviteNotFound
	}
	if err := s.familySvc.VerifyAccess(actorID, invite.FamilyID); err != nil {
		return err
	}
	if invite.IsUsed() {
		return ErrInviteAlreadyUsed
	}
	return s.inviteRepo.DeleteInvite(inviteID)
}

// PruneConsumedInvites removes accepted invites older than the cutoff
func (s *InviteService) PruneConsumedInvites(olderThan time.Duration) (int64, error) {
	return s.inviteRepo.DeleteConsumedInvitesBefore(time.Now().UTC().Add(-olderThan))
}
