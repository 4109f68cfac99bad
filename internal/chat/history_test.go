package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/store"
)

type fakeUsers struct {
	byName map[string]*store.User
}

func (f *fakeUsers) CreateUser(context.Context, string, string, string, string) (*store.User, error) {
	return nil, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(context.Context, string) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (f *fakeUsers) UpdateUserPassword(context.Context, int64, string) error {
	return nil
}

type listedConversation struct {
	fakeMessages
	userA, userB string
	result       []*store.ChatMessage
}

func (f *listedConversation) ListConversation(_ context.Context, userA, userB string) ([]*store.ChatMessage, error) {
	f.userA, f.userB = userA, userB
	return f.result, nil
}

func TestConversationResolvesCounterpart(t *testing.T) {
	users := &fakeUsers{byName: map[string]*store.User{
		"bob": {ID: 2, Username: "bob"},
	}}
	messages := &listedConversation{result: []*store.ChatMessage{
		{SenderID: "1", ReceiverID: "2", Content: "hey", Timestamp: time.Now()},
	}}

	h := NewHistory(users, messages)
	me := &auth.Identity{UserID: 1, Username: "alice"}

	got, err := h.Conversation(context.Background(), me, "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hey", got[0].Content)

	// The query runs over stringified user ids, both participants.
	assert.Equal(t, "1", messages.userA)
	assert.Equal(t, "2", messages.userB)
}

func TestConversationUnknownUser(t *testing.T) {
	h := NewHistory(&fakeUsers{byName: map[string]*store.User{}}, &listedConversation{})
	me := &auth.Identity{UserID: 1, Username: "alice"}

	_, err := h.Conversation(context.Background(), me, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConversationWithSelf(t *testing.T) {
	users := &fakeUsers{byName: map[string]*store.User{
		"alice": {ID: 1, Username: "alice"},
	}}
	h := NewHistory(users, &listedConversation{})
	me := &auth.Identity{UserID: 1, Username: "alice"}

	_, err := h.Conversation(context.Background(), me, "alice")
	assert.ErrorIs(t, err, ErrSelfChat)
}
