// internal/domain/push/subscription.go
package push

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Subscription is one browser push registration for a user. A user may hold
// several (one per browser/device). Read-only input to the dispatcher.
type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

// SubscriptionRepository reads registered push endpoints.
type SubscriptionRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error)
}

// Message is the payload delivered to a push endpoint.
type Message struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
}

// Sender delivers a message to a single subscription endpoint. Transport
// details (timeouts, encryption, the push service protocol) live behind this
// interface.
type Sender interface {
	Send(ctx context.Context, sub *Subscription, msg Message) error
}
