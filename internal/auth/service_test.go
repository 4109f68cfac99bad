package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/store"
	"github.com/hirehub/hirehub-server/internal/store/sqlite"
)

// captureMailer records the last reset link instead of sending it.
type captureMailer struct {
	email string
	link  string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, resetLink string) error {
	m.email = email
	m.link = resetLink
	return nil
}

func newTestAuthService(t *testing.T) (*Service, *captureMailer) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	mailer := &captureMailer{}
	return NewService(st, st, jwtConfig, mailer, time.Hour, "http://localhost/reset"), mailer
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
	}{
		{"too short", "ab"},
		{"too long", strings.Repeat("x", 33)},
		{"underscore reserved", "jane_doe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.username, "u@example.com", "98", "password123"); !errors.Is(err, ErrInvalidUsername) {
				t.Fatalf("expected ErrInvalidUsername, got %v", err)
			}
		})
	}
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "alice", "a@example.com", "98", "short"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestRegister_RejectsDuplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@example.com", "98", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other@example.com", "99", "password123"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@example.com", "98", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestVerifyBearer(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@example.com", "98", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.TokenFor(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	identity, err := svc.VerifyBearer(ctx, "Bearer "+token)
	if err != nil {
		t.Fatalf("verify bearer: %v", err)
	}
	if identity.UserID != user.ID || identity.Username != "alice" {
		t.Errorf("unexpected identity %+v", identity)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"wrong scheme", "Token " + token},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.VerifyBearer(ctx, tt.header); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestVerifyBearer_ForgedSignature(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@example.com", "98", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	otherConfig := &JWTConfig{
		Secret:   []byte("attacker-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	forged, err := GenerateToken(otherConfig, user.ID, user.Username)
	if err != nil {
		t.Fatalf("generate forged token: %v", err)
	}

	if _, err := svc.VerifyBearer(ctx, "Bearer "+forged); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for forged signature, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@example.com", "98", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "a@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if mailer.email != "a@example.com" || mailer.link == "" {
		t.Fatalf("expected reset link mailed, got %+v", mailer)
	}

	// The token rides at the end of the mailed link.
	parts := strings.Split(mailer.link, "token=")
	if len(parts) != 2 {
		t.Fatalf("unexpected reset link %q", mailer.link)
	}
	token := parts[1]

	if err := svc.ResetPassword(ctx, token, "new-password"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password should no longer work, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "new-password"); err != nil {
		t.Errorf("new password should work: %v", err)
	}

	// Single use: the same token cannot be replayed.
	if err := svc.ResetPassword(ctx, token, "another-password"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestResetPassword_UnknownToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if err := svc.ResetPassword(context.Background(), "no-such-token", "new-password"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLogMailerNeverFails(t *testing.T) {
	nop := zerolog.Nop()
	m := NewLogMailer(&nop)

	if err := m.SendPasswordReset(context.Background(), "a@example.com", "http://localhost/reset?token=x"); err != nil {
		t.Fatalf("log mailer returned error: %v", err)
	}
}
