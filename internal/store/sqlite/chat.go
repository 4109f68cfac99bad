package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hirehub/hirehub-server/internal/store"
)

// ==== MessageStore implementation ====

// SaveChatMessage appends a chat message with a store-assigned timestamp.
// Messages are append-only: there is no update or delete path.
func (s *SQLiteStore) SaveChatMessage(ctx context.Context, senderID, receiverID, content string) (*store.ChatMessage, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO chat_messages (sender_id, receiver_id, content, timestamp)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, senderID, receiverID, content, now)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.ChatMessage{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  now,
	}, nil
}

// ListConversation returns all messages between two users in either
// direction, ordered ascending by timestamp.
func (s *SQLiteStore) ListConversation(ctx context.Context, userA, userB string) ([]*store.ChatMessage, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, timestamp
		FROM chat_messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var messages []*store.ChatMessage
	for rows.Next() {
		var msg store.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// ==== ResetTokenStore implementation ====

// CreateResetToken stores a reset token for a user.
func (s *SQLiteStore) CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, userID, token, expiresAt.UTC()); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// GetResetToken retrieves a reset token by value.
func (s *SQLiteStore) GetResetToken(ctx context.Context, token string) (*store.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token, created_at, expires_at, used
		FROM password_reset_tokens
		WHERE token = ?
	`
	var t store.PasswordResetToken
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.Used,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reset token: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query reset token: %w", err)
	}
	return &t, nil
}

// MarkResetTokenUsed consumes a token.
func (s *SQLiteStore) MarkResetTokenUsed(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("update reset token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reset token: %w", store.ErrNotFound)
	}
	return nil
}

// DeleteExpiredResetTokens prunes tokens that expired before now.
func (s *SQLiteStore) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}
