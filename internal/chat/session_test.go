package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/store"
)

type savedMessage struct {
	senderID   string
	receiverID string
	content    string
}

// fakeMessages records saves and can be told to fail.
type fakeMessages struct {
	saved []savedMessage
	err   error
}

func (f *fakeMessages) SaveChatMessage(_ context.Context, senderID, receiverID, content string) (*store.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, savedMessage{senderID, receiverID, content})
	return &store.ChatMessage{
		ID:         int64(len(f.saved)),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (f *fakeMessages) ListConversation(context.Context, string, string) ([]*store.ChatMessage, error) {
	return nil, nil
}

func newTestSession(t *testing.T, registry Registry, messages store.MessageStore) *Session {
	t.Helper()
	nop := zerolog.Nop()
	return NewSession(registry, messages, &nop)
}

func joinedTestSession(t *testing.T, registry Registry, messages store.MessageStore) *Session {
	t.Helper()
	sess := newTestSession(t, registry, messages)
	sess.Authenticate(&auth.Identity{UserID: 1, Username: "alice"})
	require.NoError(t, sess.Join(&store.User{ID: 2, Username: "bob"}))
	return sess
}

func TestSessionLifecycle(t *testing.T) {
	registry := NewInProcessRegistry()
	sess := newTestSession(t, registry, &fakeMessages{})

	assert.Equal(t, StateConnecting, sess.State())

	sess.Authenticate(&auth.Identity{UserID: 1, Username: "alice"})
	assert.Equal(t, StateAuthenticating, sess.State())

	require.NoError(t, sess.Join(&store.User{ID: 2, Username: "bob"}))
	assert.Equal(t, StateJoined, sess.State())
	assert.Equal(t, "chat_alice_bob", sess.Room())
	assert.Equal(t, 1, registry.RoomSize("chat_alice_bob"))

	sess.Close()
	assert.Equal(t, StateClosed, sess.State())
	assert.Equal(t, 0, registry.RoomSize("chat_alice_bob"))
}

func TestJoinRequiresIdentity(t *testing.T) {
	sess := newTestSession(t, NewInProcessRegistry(), &fakeMessages{})

	err := sess.Join(&store.User{ID: 2, Username: "bob"})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestJoinRejectsSelf(t *testing.T) {
	sess := newTestSession(t, NewInProcessRegistry(), &fakeMessages{})
	sess.Authenticate(&auth.Identity{UserID: 1, Username: "alice"})

	err := sess.Join(&store.User{ID: 1, Username: "alice"})
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestHandleInboundPersistsThenBroadcasts(t *testing.T) {
	registry := NewInProcessRegistry()
	messages := &fakeMessages{}

	alice := joinedTestSession(t, registry, messages)
	defer alice.Close()

	bob := newTestSession(t, registry, messages)
	bob.Authenticate(&auth.Identity{UserID: 2, Username: "bob"})
	require.NoError(t, bob.Join(&store.User{ID: 1, Username: "alice"}))
	defer bob.Close()

	require.NoError(t, alice.HandleInbound(context.Background(), []byte(`{"message":"hello bob"}`)))

	require.Len(t, messages.saved, 1)
	assert.Equal(t, savedMessage{senderID: "1", receiverID: "2", content: "hello bob"}, messages.saved[0])

	// Fan-out reaches the peer and echoes to the sender.
	select {
	case ev := <-bob.Events():
		assert.Equal(t, "hello bob", ev.Message)
	default:
		t.Fatal("peer did not receive the broadcast")
	}
	select {
	case ev := <-alice.Events():
		assert.Equal(t, "hello bob", ev.Message)
	default:
		t.Fatal("sender did not receive its own echo")
	}
}

func TestHandleInboundMalformed(t *testing.T) {
	registry := NewInProcessRegistry()
	messages := &fakeMessages{}
	sess := joinedTestSession(t, registry, messages)
	defer sess.Close()

	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{not json`},
		{"missing field", `{"text":"wrong key"}`},
		{"empty message", `{"message":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sess.HandleInbound(context.Background(), []byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}

	// Nothing was persisted or delivered, and the session stays joined.
	assert.Empty(t, messages.saved)
	assert.Len(t, sess.Events(), 0)
	assert.Equal(t, StateJoined, sess.State())
}

func TestHandleInboundStorageFailure(t *testing.T) {
	registry := NewInProcessRegistry()
	messages := &fakeMessages{err: errors.New("disk full")}
	sess := joinedTestSession(t, registry, messages)
	defer sess.Close()

	err := sess.HandleInbound(context.Background(), []byte(`{"message":"doomed"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedMessage)

	// The message is dropped, never broadcast, and the session survives.
	assert.Len(t, sess.Events(), 0)
	assert.Equal(t, StateJoined, sess.State())
	assert.Equal(t, 1, registry.RoomSize(sess.Room()))

	// Recovery: once storage heals, traffic flows again.
	messages.err = nil
	require.NoError(t, sess.HandleInbound(context.Background(), []byte(`{"message":"back online"}`)))
	require.Len(t, messages.saved, 1)
}

func TestCloseIsIdempotent(t *testing.T) {
	registry := NewInProcessRegistry()
	sess := joinedTestSession(t, registry, &fakeMessages{})

	room := sess.Room()
	sess.Close()
	sess.Close()

	assert.Equal(t, StateClosed, sess.State())
	assert.Equal(t, 0, registry.RoomSize(room))
}
