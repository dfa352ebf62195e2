// internal/domain/audience/resolver.go
package audience

import (
	"context"

	"github.com/google/uuid"
)

// Audience types a notification can target. An unrecognized type resolves to
// an empty recipient set rather than an error.
const (
	TypeAll     = "all"
	TypeCountry = "country"
	TypeUsers   = "users"
)

// Recipient is one resolved member of a notification's audience. Recipients
// are computed fresh at dispatch time and never persisted.
type Recipient struct {
	UserID uuid.UUID
}

// Filter is the decoded form of a notification's audience_filter document.
// Which fields are meaningful depends on the audience type.
type Filter struct {
	Country string      `json:"country,omitempty"`
	UserIDs []uuid.UUID `json:"user_ids,omitempty"`
}

// Resolver turns an (audience_type, audience_filter) pair into a concrete
// recipient set. The filter is passed verbatim as the raw JSON stored on the
// notification.
type Resolver interface {
	Resolve(ctx context.Context, audienceType, audienceFilter string) ([]Recipient, error)
}
