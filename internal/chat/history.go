package chat

import (
	"context"
	"strconv"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/store"
)

// History is the read path: it reconstructs the ordered conversation
// between the requesting user and a counterpart named by username.
// Read-only; it never touches the live channel.
type History struct {
	users    store.UserStore
	messages store.MessageStore
}

// NewHistory creates a history query service.
func NewHistory(users store.UserStore, messages store.MessageStore) *History {
	return &History{users: users, messages: messages}
}

// Conversation resolves the counterpart by username and returns all
// messages between the pair, oldest first. Returns store.ErrNotFound
// (wrapped) when the counterpart doesn't exist and ErrSelfChat when the
// requester asks for a conversation with themselves.
func (h *History) Conversation(ctx context.Context, me *auth.Identity, otherUsername string) ([]*store.ChatMessage, error) {
	other, err := h.users.GetUserByUsername(ctx, otherUsername)
	if err != nil {
		return nil, err
	}

	if other.ID == me.UserID {
		return nil, ErrSelfChat
	}

	return h.messages.ListConversation(ctx,
		strconv.FormatInt(me.UserID, 10),
		strconv.FormatInt(other.ID, 10))
}
