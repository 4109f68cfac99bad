package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIdempotent(t *testing.T) {
	r := NewInProcessRegistry()
	h := NewHandle()

	r.Join("chat_a_b", h)
	r.Join("chat_a_b", h)

	assert.Equal(t, 1, r.RoomSize("chat_a_b"))
}

func TestBroadcastIncludesSender(t *testing.T) {
	r := NewInProcessRegistry()
	sender := NewHandle()
	peer := NewHandle()

	r.Join("chat_a_b", sender)
	r.Join("chat_a_b", peer)

	r.Broadcast(context.Background(), "chat_a_b", Event{Message: "hello"})

	for _, h := range []*Handle{sender, peer} {
		select {
		case ev := <-h.Events:
			assert.Equal(t, "hello", ev.Message)
		default:
			t.Fatal("expected event delivered to every member")
		}
	}
}

func TestBroadcastScopedToRoom(t *testing.T) {
	r := NewInProcessRegistry()
	inRoom := NewHandle()
	elsewhere := NewHandle()

	r.Join("chat_a_b", inRoom)
	r.Join("chat_c_d", elsewhere)

	r.Broadcast(context.Background(), "chat_a_b", Event{Message: "secret"})

	require.Len(t, inRoom.Events, 1)
	assert.Len(t, elsewhere.Events, 0)
}

func TestLeaveRemovesAndGarbageCollects(t *testing.T) {
	r := NewInProcessRegistry()
	h := NewHandle()

	r.Join("chat_a_b", h)
	r.Leave("chat_a_b", h)
	assert.Equal(t, 0, r.RoomSize("chat_a_b"))

	// Leaving twice, or leaving a room never joined, is harmless.
	r.Leave("chat_a_b", h)
	r.Leave("chat_x_y", h)

	// A departed member gets nothing.
	r.Broadcast(context.Background(), "chat_a_b", Event{Message: "gone"})
	assert.Len(t, h.Events, 0)
}

func TestSlowConsumerDoesNotBlockBroadcast(t *testing.T) {
	r := NewInProcessRegistry()
	slow := NewHandle()
	healthy := NewHandle()

	r.Join("chat_a_b", slow)
	r.Join("chat_a_b", healthy)

	// Fill the slow handle's buffer, then keep broadcasting.
	for i := 0; i < cap(slow.Events)+5; i++ {
		r.Broadcast(context.Background(), "chat_a_b", Event{Message: "m"})
		// Drain the healthy member so it never fills up.
		<-healthy.Events
	}

	assert.Equal(t, cap(slow.Events), len(slow.Events))
}

func TestConcurrentJoinBroadcastLeave(t *testing.T) {
	r := NewInProcessRegistry()

	const members = 32
	handles := make([]*Handle, members)
	var wg sync.WaitGroup
	for i := range handles {
		handles[i] = NewHandle()
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			r.Join("chat_a_b", h)
		}(handles[i])
	}
	wg.Wait()

	require.Equal(t, members, r.RoomSize("chat_a_b"))

	r.Broadcast(context.Background(), "chat_a_b", Event{Message: "fan-out"})
	for i, h := range handles {
		select {
		case ev := <-h.Events:
			assert.Equal(t, "fan-out", ev.Message, "member %d", i)
		default:
			t.Fatalf("member %d missed the broadcast", i)
		}
	}

	for _, h := range handles {
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			r.Leave("chat_a_b", h)
		}(h)
	}
	wg.Wait()

	assert.Equal(t, 0, r.RoomSize("chat_a_b"))
}
