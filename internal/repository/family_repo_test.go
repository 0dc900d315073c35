package repository

import "testing"

func TestCreateFamilyAddsCreatorMembership(t *testing.T) {
	db := newTestDB(t)
	repo := NewFamilyRepository(db)

	userID := seedUser(t, db, "alice")
	family, err := repo.CreateFamily("Smith", userID)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	isMember, err := repo.IsMember(userID, family.ID)
	if err != nil {
		t.Fatalf("IsMember() error = %v", err)
	}
	if !isMember {
		t.Error("creator should be a member of the new family")
	}

	members, err := repo.ListMembers(family.ID)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1", len(members))
	}
	if members[0].Username != "alice" {
		t.Errorf("member username = %q, want alice", members[0].Username)
	}
}

func TestDuplicateMembershipRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewFamilyRepository(db)

	userID := seedUser(t, db, "bob")
	familyID := seedFamily(t, db, "Jones", userID)

	// Creator already holds a membership; a second insert must violate
	// the unique constraint.
	if err := repo.AddMember(userID, familyID); err == nil {
		t.Error("expected unique constraint violation on duplicate membership")
	}
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	repo := NewFamilyRepository(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	familyID := seedFamily(t, db, "Smith", alice)

	if err := repo.AddMember(bob, familyID); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	removed, err := repo.RemoveMember(bob, familyID)
	if err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if !removed {
		t.Error("RemoveMember() = false, want true for an existing membership")
	}

	removed, err = repo.RemoveMember(bob, familyID)
	if err != nil {
		t.Fatalf("RemoveMember() second call error = %v", err)
	}
	if removed {
		t.Error("RemoveMember() = true, want false for an absent membership")
	}
}

func TestDeleteFamilyCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewFamilyRepository(db)

	alice := seedUser(t, db, "alice")
	familyID := seedFamily(t, db, "Smith", alice)

	if err := repo.DeleteFamily(familyID); err != nil {
		t.Fatalf("DeleteFamily() error = %v", err)
	}

	isMember, err := repo.IsMember(alice, familyID)
	if err != nil {
		t.Fatalf("IsMember() error = %v", err)
	}
	if isMember {
		t.Error("membership should cascade away with the family")
	}

	family, err := repo.GetFamilyByID(familyID)
	if err != nil {
		t.Fatalf("GetFamilyByID() error = %v", err)
	}
	if family != nil {
		t.Error("family should be gone after delete")
	}
}

func TestListUserFamilies(t *testing.T) {
	db := newTestDB(t)
	repo := NewFamilyRepository(db)

	alice := seedUser(t, db, "alice")
	seedFamily(t, db, "Smith", alice)
	seedFamily(t, db, "Jones", alice)

	bob := seedUser(t, db, "bob")
	seedFamily(t, db, "Brown", bob)

	families, err := repo.ListUserFamilies(alice)
	if err != nil {
		t.Fatalf("ListUserFamilies() error = %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("got %d families, want 2", len(families))
	}
	// Ordered by name
	if families[0].Name != "Jones" || families[1].Name != "Smith" {
		t.Errorf("families ordered %q, %q; want Jones, Smith", families[0].Name, families[1].Name)
	}
}
