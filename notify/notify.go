// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/pollboard/models"
)

// Event kinds pushed to live subscribers
const (
	KindVote = "vote" // a vote was recorded
	KindPoll = "poll" // the poll or its options changed
)

// Notifier is implemented by Hub and RedisBridge. Writers call
// PollChanged after commit; it must never block the request.
type Notifier interface {
	PollChanged(pollID, kind string)
}

// Hub fans poll-change events out to in-process subscribers, keyed by
// poll ID. Subscribers are buffered channels; a slow consumer drops
// events rather than blocking the voting path, which is fine because
// events are refresh triggers, not data.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.PollEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan models.PollEvent]struct{}),
	}
}

// Subscribe registers a listener for one poll. The returned channel is
// closed by Unsubscribe, never by the hub.
func (h *Hub) Subscribe(pollID string) chan models.PollEvent {
	ch := make(chan models.PollEvent, 8)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[pollID] == nil {
		h.subs[pollID] = make(map[chan models.PollEvent]struct{})
	}
	h.subs[pollID][ch] = struct{}{}

	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(pollID string, ch chan models.PollEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[pollID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, pollID)
		}
	}
}

// PollChanged delivers an event to every subscriber of the poll.
func (h *Hub) PollChanged(pollID, kind string) {
	event := models.PollEvent{Type: kind, PollID: pollID}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[pollID] {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; it will catch up on its next refetch
		}
	}
}

// SubscriberCount reports the number of live listeners for a poll.
func (h *Hub) SubscriberCount(pollID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[pollID])
}

const redisChannel = "pollboard:poll-events"

// RedisBridge publishes poll-change events to a Redis channel and relays
// events published by other instances into the local hub, so websocket
// subscribers see votes recorded anywhere.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	cancel context.CancelFunc
}

// NewRedisBridge connects to Redis and starts the relay goroutine.
func NewRedisBridge(ctx context.Context, redisURL string, hub *Hub) (*RedisBridge, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	b := &RedisBridge{client: client, hub: hub, cancel: cancel}

	sub := client.Subscribe(ctx, redisChannel)
	go b.relay(ctx, sub)

	return b, nil
}

// PollChanged publishes the event to Redis. The relay loop feeds it back
// to the local hub (along with events from other instances), so local
// subscribers are still notified.
func (b *RedisBridge) PollChanged(pollID, kind string) {
	payload, err := json.Marshal(models.PollEvent{Type: kind, PollID: pollID})
	if err != nil {
		slog.Error("failed to marshal poll event", "error", err)
		return
	}

	if err := b.client.Publish(context.Background(), redisChannel, payload).Err(); err != nil {
		slog.Error("failed to publish poll event", "error", err, "poll_id", pollID)
		// Degrade to local-only delivery rather than losing the event
		b.hub.PollChanged(pollID, kind)
	}
}

func (b *RedisBridge) relay(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var event models.PollEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("dropping malformed poll event", "error", err, "payload", msg.Payload)
				continue
			}
			b.hub.PollChanged(event.PollID, event.Type)
		}
	}
}

// Close stops the relay and releases the Redis connection.
func (b *RedisBridge) Close() error {
	b.cancel()
	return b.client.Close()
}
