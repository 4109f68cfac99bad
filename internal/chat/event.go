package chat

// Event is the payload fanned out to every member of a room. It is sent
// to all members' clients verbatim, including the sender's own client,
// which receives its message back as confirmation of persistence.
type Event struct {
	Message string `json:"message"`
}

// InboundMessage is the expected shape of a client frame. Anything else
// is a recoverable per-message error.
type InboundMessage struct {
	Message string `json:"message"`
}
