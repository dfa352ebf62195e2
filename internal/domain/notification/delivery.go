// internal/domain/notification/delivery.go
package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the outcome of a single delivery attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryRecord captures one delivery attempt for one (recipient, channel)
// pair. Records are insert-only; a failed attempt is recorded, never retried
// in place. Corresponds to the 'delivery_records' table.
type DeliveryRecord struct {
	ID             uuid.UUID
	NotificationID uuid.UUID
	UserID         uuid.UUID
	Channel        ChannelKind
	Status         DeliveryStatus
	ErrorMessage   sql.NullString
	DeliveredAt    time.Time
}

// DispatchLog is the per-attempt audit entry for a notification: exactly one
// row is written per notification per dispatch cycle, success or failure.
// Corresponds to the 'dispatch_logs' table.
type DispatchLog struct {
	ID              int64
	NotificationID  uuid.UUID
	DispatchTime    time.Time
	Success         bool
	RecipientsCount int
	ErrorMessage    sql.NullString
}
