package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInviteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	familyID := env.familyOf(t, "Smith", alice)

	issued, err := env.invite.Issue(context.Background(), familyID, alice, nil)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if issued.Invite.Token == "" {
		t.Fatal("issued invite should carry a token")
	}
	if issued.Invite.ExpiresAt == nil {
		t.Fatal("issued invite should carry an expiry")
	}

	family, err := env.invite.Redeem(issued.Invite.Token, bob)
	if err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}
	if family.ID != familyID {
		t.Errorf("redeemed into family %d, want %d", family.ID, familyID)
	}

	members, err := env.family.ListMembers(familyID, alice)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}

	// The token is spent
	if _, err := env.invite.Redeem(issued.Invite.Token, bob); !errors.Is(err, ErrInviteAlreadyUsed) {
		t.Errorf("second Redeem() error = %v, want ErrInviteAlreadyUsed", err)
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	bob := env.user(t, "bob")

	if _, err := env.invite.Redeem("does-not-exist", bob); !errors.Is(err, ErrInviteNotFound) {
		t.Errorf("Redeem() error = %v, want ErrInviteNotFound", err)
	}
}

func TestRedeemExpiredInvite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	familyID := env.familyOf(t, "Smith", alice)

	// Persist an invite that expired an hour ago
	expired := time.Now().UTC().Add(-time.Hour)
	invite, err := env.inviteRepo.CreateInvite(familyID, "expired-token", nil, &expired)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v", err)
	}

	if _, err := env.invite.Redeem(invite.Token, bob); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("Redeem() error = %v, want ErrInviteExpired", err)
	}

	// Expiry must not grant membership
	isMember, err := env.familyRepo.IsMember(bob, familyID)
	if err != nil {
		t.Fatalf("IsMember() error = %v", err)
	}
	if isMember {
		t.Error("expired redemption must not add a membership")
	}
}

func TestRedeemAsExistingMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	familyID := env.familyOf(t, "Smith", alice)

	issued, err := env.invite.Issue(context.Background(), familyID, alice, nil)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := env.invite.Redeem(issued.Invite.Token, alice); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("Redeem() error = %v, want ErrAlreadyMember", err)
	}

	// The invite survives for someone else
	invite, err := env.inviteRepo.GetInviteByToken(issued.Invite.Token)
	if err != nil {
		t.Fatalf("GetInviteByToken() error = %v", err)
	}
	if invite.Accepted {
		t.Error("rejected redemption must not consume the invite")
	}
}

func TestIssueRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	familyID := env.familyOf(t, "Smith", alice)

	if _, err := env.invite.Issue(context.Background(), familyID, mallory, nil); !errors.Is(err, ErrNotFamilyMember) {
		t.Errorf("Issue() error = %v, want ErrNotFamilyMember", err)
	}
}

func TestRevokeInvite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	familyID := env.familyOf(t, "Smith", alice)

	issued, err := env.invite.Issue(context.Background(), familyID, alice, nil)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if err := env.invite.Revoke(issued.Invite.ID, alice); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if _, err := env.invite.Redeem(issued.Invite.Token, bob); !errors.Is(err, ErrInviteNotFound) {
		t.Errorf("Redeem() after revoke error = %v, want ErrInviteNotFound", err)
	}
}

func TestIssueWithEmailOnDisabledService(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	familyID := env.familyOf(t, "Smith", alice)

	email := "invitee@example.com"
	issued, err := env.invite.Issue(context.Background(), familyID, alice, &email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	// Disabled mail service skips the send without failing the invite
	if issued.EmailSent {
		t.Error("disabled email service must not report a sent email")
	}
	if issued.Warning != "" {
		t.Errorf("warning = %q, want none for a clean skip", issued.Warning)
	}
	if issued.Invite.InvitedEmail == nil || *issued.Invite.InvitedEmail != email {
		t.Error("invite should record the invited email")
	}
}
