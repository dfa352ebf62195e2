// internal/infra/database/postgres_subscription_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"meditation_notification_service/internal/domain/push"

	"github.com/google/uuid"
)

type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*push.Subscription, error) {
	query := `SELECT id, user_id, endpoint, p256dh, auth, created_at
               FROM push_subscriptions
               WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying push subscriptions for user %s: %w", userID, err)
	}
	defer rows.Close()

	subs := make([]*push.Subscription, 0)
	for rows.Next() {
		s := push.Subscription{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning push subscription row: %w", err)
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push subscription rows: %w", err)
	}
	return subs, nil
}
