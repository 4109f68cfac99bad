package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoomCommutative(t *testing.T) {
	ab, err := ResolveRoom("alice", "bob")
	require.NoError(t, err)
	ba, err := ResolveRoom("bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, "chat_alice_bob", ab)
}

func TestResolveRoomOrdering(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"zoe", "adam", "chat_adam_zoe"},
		{"adam", "zoe", "chat_adam_zoe"},
		{"Bob", "alice", "chat_Bob_alice"}, // byte order, capitals sort first
		{"user1", "user2", "chat_user1_user2"},
	}
	for _, tt := range tests {
		got, err := ResolveRoom(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ResolveRoom(%q, %q)", tt.a, tt.b)
	}
}

func TestResolveRoomRejectsSelf(t *testing.T) {
	_, err := ResolveRoom("alice", "alice")
	assert.ErrorIs(t, err, ErrSelfChat)
}
