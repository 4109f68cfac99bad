package chat

import (
	"context"
	"sync"

	"github.com/hirehub/hirehub-server/internal/utils"
)

// Handle is a non-owning reference to a live connection, held by the
// registry for fan-out. The owning session drains Events and controls
// the connection's lifecycle.
type Handle struct {
	ID     string
	Events chan Event
}

// NewHandle constructs a handle with a buffered event channel.
func NewHandle() *Handle {
	return &Handle{
		ID:     utils.NewID(),
		Events: make(chan Event, 8),
	}
}

// deliver pushes an event without blocking. Slow or abandoned handles
// are skipped so one stale member never stalls the rest of the room.
func (h *Handle) deliver(ev Event) {
	select {
	case h.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

// Registry tracks which connections belong to which room and fans
// events out to them. Implementations must serialize member-set
// mutations; delivery is best-effort per member.
type Registry interface {
	// Join adds a handle to the room's member set. Idempotent.
	Join(room string, h *Handle)

	// Leave removes a handle from the room. Removing a non-member is a no-op.
	Leave(room string, h *Handle)

	// Broadcast delivers an event to every current member of the room,
	// the originator included.
	Broadcast(ctx context.Context, room string, ev Event)
}

// InProcessRegistry is the single-instance Registry: a mutex-guarded map
// of room id to member set. Empty rooms are removed on last leave so
// long-lived processes don't accumulate dead entries.
type InProcessRegistry struct {
	mu    sync.Mutex
	rooms map[string]map[*Handle]struct{}
}

// NewInProcessRegistry constructs an empty registry.
func NewInProcessRegistry() *InProcessRegistry {
	return &InProcessRegistry{
		rooms: make(map[string]map[*Handle]struct{}),
	}
}

// Join adds a handle to the room, creating the room lazily.
func (r *InProcessRegistry) Join(room string, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Handle]struct{})
		r.rooms[room] = members
	}
	members[h] = struct{}{}
}

// Leave removes a handle from the room and garbage-collects the room
// entry when the last member leaves.
func (r *InProcessRegistry) Leave(room string, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, h)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Broadcast delivers the event to every member of the room.
func (r *InProcessRegistry) Broadcast(_ context.Context, room string, ev Event) {
	r.mu.Lock()
	members := make([]*Handle, 0, len(r.rooms[room]))
	for h := range r.rooms[room] {
		members = append(members, h)
	}
	r.mu.Unlock()

	for _, h := range members {
		h.deliver(ev)
	}
}

// RoomSize returns the current member count of a room.
func (r *InProcessRegistry) RoomSize(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[room])
}

var _ Registry = (*InProcessRegistry)(nil)
