// internal/domain/realtime/broadcaster.go
package realtime

import "context"

// Broadcaster publishes fire-and-forget events to connected clients on a
// named channel. Delivery is best-effort: callers log failures and move on.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel, event string, payload any) error
}
