package broadcast

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel shared by all server
// processes of one deployment.
const DefaultChannel = "stocks.events"

// Broadcaster routes gateway events to every connected session. With a
// Redis client attached, events are published to a pub/sub channel and
// the local hub is fed from the subscription, so multiple processes
// behind a load balancer share one logical channel. Without Redis the
// broadcaster degrades to the in-process hub alone. Publishing is
// fire-and-forget either way: failures are logged, never surfaced to
// the writer.
type Broadcaster struct {
	hub     *Hub
	rdb     *redis.Client
	channel string
}

// NewBroadcaster wires a hub to an optional Redis client. rdb may be
// nil, in which case events stay in-process.
func NewBroadcaster(hub *Hub, rdb *redis.Client, channel string) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{hub: hub, rdb: rdb, channel: channel}
}

// Hub exposes the underlying hub for the SSE endpoint.
func (b *Broadcaster) Hub() *Hub { return b.hub }

// Publish sends ev to all connected sessions. When Redis is attached
// the event travels through pub/sub and comes back via Run, so it is
// not delivered to the local hub twice. A failed Redis publish falls
// back to local delivery so sessions on this process still converge.
func (b *Broadcaster) Publish(ctx context.Context, ev Event) {
	if b.rdb == nil {
		b.hub.Publish(ev)
		return
	}
	body, err := ev.Encode()
	if err != nil {
		log.Printf("broadcast: encode event failed: %v", err)
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, body).Err(); err != nil {
		log.Printf("broadcast: redis publish failed, delivering locally: %v", err)
		b.hub.Publish(ev)
	}
}

// Run consumes the Redis subscription and feeds the local hub until ctx
// is cancelled. It is a no-op when no Redis client is attached. Run is
// meant to be started once, in its own goroutine, at boot.
func (b *Broadcaster) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("broadcast: drop malformed pubsub message: %v", err)
				continue
			}
			b.hub.Publish(ev)
		}
	}
}
