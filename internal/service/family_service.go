package service

import (
	"errors"
	"strings"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/repository"
)

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrNotFamilyMember   = errors.New("not a member of this family")
	ErrAlreadyMember     = errors.New("already a member of this family")
	ErrInvalidFamilyName = errors.New("family name must be between 1 and 100 characters")
)

// FamilyService handles family groups and memberships
type FamilyService struct {
	familyRepo *repository.FamilyRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository) *FamilyService {
	return &FamilyService{familyRepo: familyRepo}
}

func validFamilyName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && len(trimmed) <= 100
}

// CreateFamily creates a family with the creator as its first member
func (s *FamilyService) CreateFamily(name string, creatorID int64) (*models.Family, error) {
	if !validFamilyName(name) {
		return nil, ErrInvalidFamilyName
	}
	return s.familyRepo.CreateFamily(strings.TrimSpace(name), creatorID)
}

// GetFamily returns a family the actor belongs to
func (s *FamilyService) GetFamily(familyID, actorID int64) (*models.Family, error) {
	if err := s.VerifyAccess(actorID, familyID); err != nil {
		return nil, err
	}
	return s.familyRepo.GetFamilyByID(familyID)
}

// RenameFamily changes a family's name. Member-only.
func (s *FamilyService) RenameFamily(familyID, actorID int64, name string) error {
	if !validFamilyName(name) {
		return ErrInvalidFamilyName
	}
	if err := s.VerifyAccess(actorID, familyID); err != nil {
		return err
	}
	return s.familyRepo.RenameFamily(familyID, strings.TrimSpace(name))
}

// DeleteFamily removes a family and everything hanging off it. Member-only.
func (s *FamilyService) DeleteFamily(familyID, actorID int64) error {
	if err := s.VerifyAccess(actorID, familyID); err != nil {
		return err
	}
	return s.familyRepo.DeleteFamily(familyID)
}

// ListUserFamilies returns the families the user belongs to
func (s *FamilyService) ListUserFamilies(userID int64) ([]models.Family, error) {
	return s.familyRepo.ListUserFamilies(userID)
}

// ListMembers returns a family's members. Member-only.
func (s *FamilyService) ListMembers(familyID, actorID int64) ([]models.FamilyMember, error) {
	if err := s.VerifyAccess(actorID, familyID); err != nil {
		return nil, err
	}
	return s.familyRepo.ListMembers(familyID)
}

// LeaveFamily removes the user's own membership
func (s *FamilyService) LeaveFamily(userID, familyID int64) error {
	removed, err := s.familyRepo.RemoveMember(userID, familyID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFamilyMember
	}
	return nil
}

// VerifyAccess checks the actor's membership of the family.
// Returns ErrFamilyNotFound for a missing family, ErrNotFamilyMember
// for a non-member.
func (s *FamilyService) VerifyAccess(userID, familyID int64) error {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return ErrFamilyNotFound
	}

	isMember, err := s.familyRepo.IsMember(userID, familyID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotFamilyMember
	}
	return nil
}
