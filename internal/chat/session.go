package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/store"
)

// ErrMalformedMessage is returned for inbound frames missing a non-empty
// message field. Recoverable: the frame is dropped, the session stays open.
var ErrMalformedMessage = errors.New("malformed message")

// State is the connection session lifecycle.
type State int

const (
	// StateConnecting: transport handshake in flight.
	StateConnecting State = iota
	// StateAuthenticating: handshake accepted, bearer credential being verified.
	StateAuthenticating
	// StateJoined: member of a room, relaying messages.
	StateJoined
	// StateClosed: terminal. Reached from any state.
	StateClosed
)

// Session is the per-connection state machine. It owns the connection's
// registry handle; the registry only ever sees the handle, never the
// session or the underlying transport.
type Session struct {
	registry Registry
	messages store.MessageStore
	log      *zerolog.Logger

	state      State
	identity   *auth.Identity
	peerID     string
	room       string
	handle     *Handle
	closeOnce  sync.Once
}

// NewSession creates a session in the Connecting state.
func NewSession(registry Registry, messages store.MessageStore, logger *zerolog.Logger) *Session {
	return &Session{
		registry: registry,
		messages: messages,
		log:      logger,
		state:    StateConnecting,
		handle:   NewHandle(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Room returns the resolved room id, empty before Join.
func (s *Session) Room() string {
	return s.room
}

// Events exposes the fan-out channel for the transport write loop.
func (s *Session) Events() <-chan Event {
	return s.handle.Events
}

// Authenticate records the verified identity. The verification itself
// happens against headers captured at handshake time, before any join.
func (s *Session) Authenticate(identity *auth.Identity) {
	s.state = StateAuthenticating
	s.identity = identity
}

// Join resolves the room for the authenticated user and the receiver
// taken from the route, and registers the handle for fan-out.
func (s *Session) Join(receiver *store.User) error {
	if s.identity == nil {
		return fmt.Errorf("%w: no identity", auth.ErrUnauthenticated)
	}

	room, err := ResolveRoom(s.identity.Username, receiver.Username)
	if err != nil {
		return err
	}

	s.room = room
	s.peerID = strconv.FormatInt(receiver.ID, 10)
	s.registry.Join(room, s.handle)
	s.state = StateJoined

	s.log.Debug().
		Str("room", room).
		Str("user", s.identity.Username).
		Msg("session joined")
	return nil
}

// HandleInbound processes one client frame: parse, persist, broadcast,
// strictly in that order. Broadcast only happens after persistence
// succeeds. Every failure here is per-message and recoverable: the
// caller logs it and keeps reading.
func (s *Session) HandleInbound(ctx context.Context, raw []byte) error {
	var inbound InboundMessage
	if err := json.Unmarshal(raw, &inbound); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if inbound.Message == "" {
		return fmt.Errorf("%w: empty message field", ErrMalformedMessage)
	}

	senderID := strconv.FormatInt(s.identity.UserID, 10)
	if _, err := s.messages.SaveChatMessage(ctx, senderID, s.peerID, inbound.Message); err != nil {
		// Not broadcast: persistence comes first. The channel stays live.
		return fmt.Errorf("persist message: %w", err)
	}

	s.registry.Broadcast(ctx, s.room, Event{Message: inbound.Message})
	return nil
}

// Close leaves the registry exactly once and marks the session closed.
// Safe to call from concurrent disconnect paths.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.room != "" {
			s.registry.Leave(s.room, s.handle)
		}
		s.state = StateClosed
	})
}
