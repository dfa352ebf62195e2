// internal/domain/notification/notification.go
package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is the scheduling state of a notification.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
)

// ChannelKind identifies a delivery mechanism for a notification.
// The set is closed: the dispatcher only knows how to deliver the kinds
// listed here and silently skips anything else, so new kinds can land in
// the database before the dispatcher learns about them.
type ChannelKind string

const (
	ChannelInApp   ChannelKind = "in_app"
	ChannelWebPush ChannelKind = "web_push"
)

// Notification is a scheduled community announcement.
// Corresponds to the 'notifications' table.
type Notification struct {
	ID             uuid.UUID
	Title          string
	Body           string
	AudienceType   string
	AudienceFilter string // raw JSON, passed verbatim to the audience resolver
	Channels       []ChannelKind
	Status         Status
	SendAt         time.Time
	SentAt         sql.NullTime
	RepeatRule     string // empty for one-shot notifications
	CreatedAt      time.Time
}

// IsRecurring reports whether the notification is rescheduled after each
// dispatch instead of being terminally marked sent.
func (n *Notification) IsRecurring() bool {
	return n.RepeatRule != ""
}
