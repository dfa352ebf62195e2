// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the storage operations the dispatcher needs for
// notifications, delivery records and dispatch logs.
type Repository interface {
	// ListDue returns every notification with status 'scheduled' whose
	// send_at is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*Notification, error)

	// MarkSent terminally marks a one-shot notification as sent.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// Reschedule advances a recurring notification to its next occurrence,
	// leaving its status 'scheduled' so it stays eligible for future cycles.
	Reschedule(ctx context.Context, id uuid.UUID, nextSendAt, sentAt time.Time) error

	// BulkCreateDeliveries persists a batch of delivery records in one
	// transaction. An empty batch is a no-op.
	BulkCreateDeliveries(ctx context.Context, records []*DeliveryRecord) error

	// CreateDispatchLog appends one dispatch audit entry.
	CreateDispatchLog(ctx context.Context, entry *DispatchLog) error
}
