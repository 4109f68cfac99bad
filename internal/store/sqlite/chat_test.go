package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hirehub/hirehub-server/internal/store"
)

func TestSaveAndListConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Both directions land in the same conversation.
	if _, err := s.SaveChatMessage(ctx, "1", "2", "hello"); err != nil {
		t.Fatalf("save message: %v", err)
	}
	if _, err := s.SaveChatMessage(ctx, "2", "1", "hi back"); err != nil {
		t.Fatalf("save message: %v", err)
	}
	if _, err := s.SaveChatMessage(ctx, "1", "2", "how are you"); err != nil {
		t.Fatalf("save message: %v", err)
	}
	// A third party's traffic stays out.
	if _, err := s.SaveChatMessage(ctx, "1", "3", "unrelated"); err != nil {
		t.Fatalf("save message: %v", err)
	}

	messages, err := s.ListConversation(ctx, "1", "2")
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}

	want := []string{"hello", "hi back", "how are you"}
	for i, m := range messages {
		if m.Content != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], m.Content)
		}
	}

	// Argument order does not matter.
	reversed, err := s.ListConversation(ctx, "2", "1")
	if err != nil {
		t.Fatalf("list reversed: %v", err)
	}
	if len(reversed) != 3 {
		t.Fatalf("expected 3 messages reversed, got %d", len(reversed))
	}
}

func TestConversationTimestampsNonDecreasing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := s.SaveChatMessage(ctx, "1", "2", "msg"); err != nil {
			t.Fatalf("save message %d: %v", i, err)
		}
	}

	messages, err := s.ListConversation(ctx, "1", "2")
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			t.Fatalf("timestamps out of order at %d", i)
		}
	}
}

func TestEmptyConversation(t *testing.T) {
	s := newTestStore(t)

	messages, err := s.ListConversation(context.Background(), "7", "8")
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty conversation, got %d messages", len(messages))
	}
}

func TestResetTokenLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "frank", "frank@example.com", "98", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	expires := time.Now().Add(time.Hour)
	if err := s.CreateResetToken(ctx, u.ID, "tok-123", expires); err != nil {
		t.Fatalf("create token: %v", err)
	}

	token, err := s.GetResetToken(ctx, "tok-123")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if token.UserID != u.ID || token.Used {
		t.Errorf("unexpected token %+v", token)
	}

	if err := s.MarkResetTokenUsed(ctx, token.ID); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	token, err = s.GetResetToken(ctx, "tok-123")
	if err != nil {
		t.Fatalf("get token again: %v", err)
	}
	if !token.Used {
		t.Error("expected token to be marked used")
	}

	if _, err := s.GetResetToken(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExpiredResetTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "grace", "grace@example.com", "98", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now()
	if err := s.CreateResetToken(ctx, u.ID, "expired", now.Add(-time.Minute)); err != nil {
		t.Fatalf("create expired token: %v", err)
	}
	if err := s.CreateResetToken(ctx, u.ID, "live", now.Add(time.Hour)); err != nil {
		t.Fatalf("create live token: %v", err)
	}

	// The sweep only touches reset tokens. Seed a chat message to prove it.
	if _, err := s.SaveChatMessage(ctx, "1", "2", "still here"); err != nil {
		t.Fatalf("save message: %v", err)
	}

	n, err := s.DeleteExpiredResetTokens(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned token, got %d", n)
	}

	if _, err := s.GetResetToken(ctx, "expired"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected expired token gone, got %v", err)
	}
	if _, err := s.GetResetToken(ctx, "live"); err != nil {
		t.Errorf("expected live token to remain: %v", err)
	}

	messages, err := s.ListConversation(ctx, "1", "2")
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("expected chat untouched by sweep, got %d messages", len(messages))
	}
}
