package chat

import "errors"

// ErrSelfChat is returned when both room participants are the same user.
var ErrSelfChat = errors.New("cannot chat with yourself")

// ResolveRoom derives the canonical room id for two participants.
// The pairing is commutative: ResolveRoom(a, b) == ResolveRoom(b, a).
// Usernames never contain underscores (enforced at registration), so
// distinct unordered pairs always map to distinct room ids.
func ResolveRoom(a, b string) (string, error) {
	if a == b {
		return "", ErrSelfChat
	}
	if a > b {
		a, b = b, a
	}
	return "chat_" + a + "_" + b, nil
}
