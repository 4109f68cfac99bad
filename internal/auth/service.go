package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hirehub/hirehub-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with an existing username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUnauthenticated is returned for any bad, missing or expired bearer credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrResetTokenInvalid is returned for unknown, used or expired reset tokens.
	ErrResetTokenInvalid = errors.New("invalid reset token")
)

// Identity is an authenticated user as resolved from a bearer credential.
type Identity struct {
	UserID   int64
	Username string
}

// Mailer delivers password reset links. The default implementation only
// logs them; SMTP delivery can be swapped in without touching the service.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetLink string) error
}

// Service provides authentication operations.
type Service struct {
	users     store.UserStore
	tokens    store.ResetTokenStore
	jwtConfig *JWTConfig
	mailer    Mailer

	resetTTL     time.Duration
	resetBaseURL string
}

// NewService creates a new authentication service.
func NewService(users store.UserStore, tokens store.ResetTokenStore, jwtConfig *JWTConfig, mailer Mailer, resetTTL time.Duration, resetBaseURL string) *Service {
	return &Service{
		users:        users,
		tokens:       tokens,
		jwtConfig:    jwtConfig,
		mailer:       mailer,
		resetTTL:     resetTTL,
		resetBaseURL: resetBaseURL,
	}
}

// Register creates a new user with hashed password and returns the record.
// Profile rows (freelancer/client) are created by the caller.
func (s *Service) Register(ctx context.Context, username, email, phone, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 || strings.Contains(username, "_") {
		// Underscores are reserved: chat room ids are derived from
		// underscore-delimited username pairs.
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	if existing, err := s.users.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUserExists
	}
	if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, email, phone, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// TokenFor issues a JWT for an already-verified user record.
func (s *Service) TokenFor(user *store.User) (string, error) {
	return GenerateToken(s.jwtConfig, user.ID, user.Username)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// VerifyBearer authenticates a raw "Bearer <token>" header value and
// resolves the embedded subject to a stored user. Any failure - wrong
// scheme, malformed token, bad signature, expiry, unknown subject -
// comes back as ErrUnauthenticated.
func (s *Service) VerifyBearer(ctx context.Context, headerValue string) (*Identity, error) {
	parts := strings.SplitN(headerValue, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("%w: missing bearer scheme", ErrUnauthenticated)
	}

	claims, err := s.ValidateToken(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
	}

	return &Identity{UserID: user.ID, Username: user.Username}, nil
}

// RequestPasswordReset issues a single-use expiring reset token for the
// account behind email and hands the link to the mailer.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user: %w", store.ErrNotFound)
	}

	token := uuid.NewString()
	if err := s.tokens.CreateResetToken(ctx, user.ID, token, time.Now().Add(s.resetTTL)); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s?token=%s", s.resetBaseURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetLink); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the user's password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrInvalidPassword
	}

	record, err := s.tokens.GetResetToken(ctx, token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if record.Used || time.Now().After(record.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdateUserPassword(ctx, record.UserID, hashedPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.MarkResetTokenUsed(ctx, record.ID); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	return nil
}

// PruneExpiredResetTokens removes tokens past their expiry. Run
// periodically by the app janitor; it only ever touches reset tokens.
func (s *Service) PruneExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpiredResetTokens(ctx, time.Now())
}
