package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/hirehub/hirehub-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "alice@example.com", "9800000001", "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero user id")
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID || byName.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", byName)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, byEmail.ID)
	}

	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "bob", "bob@example.com", "98", "hash"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.CreateUser(ctx, "bob", "other@example.com", "99", "hash"); err == nil {
		t.Fatal("expected error for duplicate username")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "carol", "carol@example.com", "98", "old-hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := s.UpdateUserPassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.PasswordHash != "new-hash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}

func TestFreelancerProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "dave", "dave@example.com", "98", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := s.CreateFreelancerProfile(ctx, u.ID, "backend developer"); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	isFreelancer, err := s.IsFreelancer(ctx, u.ID)
	if err != nil {
		t.Fatalf("is freelancer: %v", err)
	}
	if !isFreelancer {
		t.Error("expected user to be a freelancer")
	}
	isClient, err := s.IsClient(ctx, u.ID)
	if err != nil {
		t.Fatalf("is client: %v", err)
	}
	if isClient {
		t.Error("did not expect user to be a client")
	}

	category, err := s.CreateCategory(ctx, "Web Development", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	skill, err := s.CreateSkill(ctx, "Go", category.ID)
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	if err := s.SetFreelancerSkills(ctx, u.ID, []int64{skill.ID}); err != nil {
		t.Fatalf("set skills: %v", err)
	}

	profile, err := s.GetFreelancerProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Bio != "backend developer" {
		t.Errorf("unexpected bio %q", profile.Bio)
	}
	if len(profile.Skills) != 1 || profile.Skills[0].Name != "Go" {
		t.Errorf("unexpected skills %+v", profile.Skills)
	}

	// Replacing the skill set drops the old links.
	other, err := s.CreateSkill(ctx, "Python", category.ID)
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	if err := s.SetFreelancerSkills(ctx, u.ID, []int64{other.ID}); err != nil {
		t.Fatalf("replace skills: %v", err)
	}
	profile, err = s.GetFreelancerProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(profile.Skills) != 1 || profile.Skills[0].Name != "Python" {
		t.Errorf("unexpected skills after replace %+v", profile.Skills)
	}
}

func TestClientProfileCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "erin", "erin@example.com", "98", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateClientProfile(ctx, u.ID); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	cat, err := s.CreateCategory(ctx, "Design", "visual work")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := s.SetClientCategories(ctx, u.ID, []int64{cat.ID}); err != nil {
		t.Fatalf("set categories: %v", err)
	}

	profile, err := s.GetClientProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(profile.Categories) != 1 || profile.Categories[0].Name != "Design" {
		t.Errorf("unexpected categories %+v", profile.Categories)
	}
}

func TestListCategoriesWithSkills(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, "Writing", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	for _, name := range []string{"Copywriting", "Editing"} {
		if _, err := s.CreateSkill(ctx, name, cat.ID); err != nil {
			t.Fatalf("create skill %s: %v", name, err)
		}
	}

	// Upsert keeps the category stable.
	again, err := s.CreateCategory(ctx, "Writing", "words for hire")
	if err != nil {
		t.Fatalf("recreate category: %v", err)
	}
	if again.ID != cat.ID {
		t.Errorf("expected same category id, got %d and %d", cat.ID, again.ID)
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
	if len(categories[0].Skills) != 2 {
		t.Errorf("expected 2 skills, got %d", len(categories[0].Skills))
	}
	if categories[0].Description != "words for hire" {
		t.Errorf("expected upserted description, got %q", categories[0].Description)
	}
}
