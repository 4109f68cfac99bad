package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "chat:"

// RedisRegistry is a Registry for multi-instance deployments. Broadcasts
// go through redis pub/sub so members connected to other processes see
// them too; local delivery happens when the subscription loop replays
// the published event into the embedded in-process registry.
type RedisRegistry struct {
	local *InProcessRegistry
	rdb   *redis.Client
	log   *zerolog.Logger

	mu   sync.Mutex
	subs map[string]*roomSubscription
}

type roomSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// NewRedisRegistry constructs a registry backed by the given redis client.
func NewRedisRegistry(rdb *redis.Client, logger *zerolog.Logger) *RedisRegistry {
	return &RedisRegistry{
		local: NewInProcessRegistry(),
		rdb:   rdb,
		log:   logger,
		subs:  make(map[string]*roomSubscription),
	}
}

// Join adds the handle locally and subscribes this process to the
// room's redis channel on first local member.
func (r *RedisRegistry) Join(room string, h *Handle) {
	r.local.Join(room, h)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[room]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := r.rdb.Subscribe(ctx, channelPrefix+room)
	r.subs[room] = &roomSubscription{pubsub: pubsub, cancel: cancel}

	go r.relay(ctx, room, pubsub)
}

// Leave removes the handle locally and drops the subscription when the
// last local member is gone.
func (r *RedisRegistry) Leave(room string, h *Handle) {
	r.local.Leave(room, h)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.local.RoomSize(room) > 0 {
		return
	}
	if sub, ok := r.subs[room]; ok {
		sub.cancel()
		if err := sub.pubsub.Close(); err != nil {
			r.log.Warn().Err(err).Str("room", room).Msg("close pubsub")
		}
		delete(r.subs, room)
	}
}

// Broadcast publishes the event to the room's redis channel. On publish
// failure delivery degrades to local members only; the channel stays live.
func (r *RedisRegistry) Broadcast(ctx context.Context, room string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Error().Err(err).Str("room", room).Msg("marshal event")
		return
	}

	if err := r.rdb.Publish(ctx, channelPrefix+room, payload).Err(); err != nil {
		r.log.Warn().Err(err).Str("room", room).Msg("publish failed, delivering locally")
		r.local.Broadcast(ctx, room, ev)
	}
}

// relay replays published events into the local registry.
func (r *RedisRegistry) relay(ctx context.Context, room string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.Warn().Err(err).Str("room", room).Msg("unmarshal published event")
				continue
			}
			r.local.Broadcast(ctx, room, ev)
		case <-ctx.Done():
			return
		}
	}
}

// Close drops all subscriptions.
func (r *RedisRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room, sub := range r.subs {
		sub.cancel()
		if err := sub.pubsub.Close(); err != nil {
			r.log.Warn().Err(err).Str("room", room).Msg("close pubsub")
		}
		delete(r.subs, room)
	}
}

var _ Registry = (*RedisRegistry)(nil)
