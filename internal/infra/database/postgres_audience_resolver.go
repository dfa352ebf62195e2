// internal/infra/database/postgres_audience_resolver.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"meditation_notification_service/internal/domain/audience"

	"github.com/lib/pq"
)

// PostgresAudienceResolver resolves audience selection rules against the
// profiles table.
type PostgresAudienceResolver struct {
	db *sql.DB
}

func NewPostgresAudienceResolver(db *sql.DB) *PostgresAudienceResolver {
	return &PostgresAudienceResolver{db: db}
}

func (r *PostgresAudienceResolver) Resolve(ctx context.Context, audienceType, audienceFilter string) ([]audience.Recipient, error) {
	switch audienceType {
	case audience.TypeAll:
		return r.queryRecipients(ctx, `SELECT id FROM profiles`)

	case audience.TypeCountry:
		filter, err := decodeFilter(audienceFilter)
		if err != nil {
			return nil, err
		}
		if filter.Country == "" {
			return []audience.Recipient{}, nil
		}
		return r.queryRecipients(ctx, `SELECT id FROM profiles WHERE country = $1`, filter.Country)

	case audience.TypeUsers:
		filter, err := decodeFilter(audienceFilter)
		if err != nil {
			return nil, err
		}
		if len(filter.UserIDs) == 0 {
			return []audience.Recipient{}, nil
		}
		ids := make([]string, len(filter.UserIDs))
		for i, id := range filter.UserIDs {
			ids[i] = id.String()
		}
		// Restrict to ids that actually exist, so stale filters don't
		// produce deliveries for deleted accounts.
		return r.queryRecipients(ctx, `SELECT id FROM profiles WHERE id = ANY($1::uuid[])`, pq.Array(ids))

	default:
		// Unknown audience types resolve to nobody rather than failing the
		// notification.
		return []audience.Recipient{}, nil
	}
}

func (r *PostgresAudienceResolver) queryRecipients(ctx context.Context, query string, args ...any) ([]audience.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying audience recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]audience.Recipient, 0)
	for rows.Next() {
		var rec audience.Recipient
		if err := rows.Scan(&rec.UserID); err != nil {
			return nil, fmt.Errorf("error scanning recipient row: %w", err)
		}
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipient rows: %w", err)
	}
	return recipients, nil
}

func decodeFilter(raw string) (*audience.Filter, error) {
	filter := &audience.Filter{}
	if raw == "" {
		return filter, nil
	}
	if err := json.Unmarshal([]byte(raw), filter); err != nil {
		return nil, fmt.Errorf("invalid audience filter: %w", err)
	}
	return filter, nil
}
