// internal/infra/realtime/redis_broadcaster.go
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster publishes realtime events over Redis PUB/SUB. The web
// front-end's realtime bridge subscribes to the same channel and forwards
// events to connected clients.
type RedisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, channel, event string, payload any) error {
	msg, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish broadcast event: %w", err)
	}
	return nil
}
