// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meditation_notification_service/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Array and driver registration
)

// Custom errors specific to the notification repository
var ErrNotificationNotFound = fmt.Errorf("notification not found")

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// --- Notification Methods ---

func (r *PostgresNotificationRepository) ListDue(ctx context.Context, now time.Time) ([]*notification.Notification, error) {
	query := `SELECT id, title, body, audience_type, audience_filter, channels, status, send_at, sent_at, repeat_rrule, created_at
               FROM notifications
               WHERE status = $1 AND send_at <= $2
               ORDER BY send_at ASC`
	rows, err := r.db.QueryContext(ctx, query, notification.StatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("error querying due notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *PostgresNotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `UPDATE notifications SET status = $1, sent_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, notification.StatusSent, sentAt, id)
	if err != nil {
		return fmt.Errorf("error marking notification %s sent: %w", id, err)
	}
	return requireRowAffected(res)
}

func (r *PostgresNotificationRepository) Reschedule(ctx context.Context, id uuid.UUID, nextSendAt, sentAt time.Time) error {
	// Status is deliberately left 'scheduled' so the notification stays
	// eligible for the next cycle.
	query := `UPDATE notifications SET send_at = $1, sent_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, nextSendAt, sentAt, id)
	if err != nil {
		return fmt.Errorf("error rescheduling notification %s: %w", id, err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// Helper to scan multiple rows
func scanNotifications(rows *sql.Rows) ([]*notification.Notification, error) {
	notifications := make([]*notification.Notification, 0)
	for rows.Next() {
		n := notification.Notification{}
		var channels []string
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Body, &n.AudienceType, &n.AudienceFilter,
			pq.Array(&channels), &n.Status, &n.SendAt, &n.SentAt, &n.RepeatRule, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		n.Channels = make([]notification.ChannelKind, len(channels))
		for i, c := range channels {
			n.Channels[i] = notification.ChannelKind(c)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

// --- DeliveryRecord Methods ---

func (r *PostgresNotificationRepository) BulkCreateDeliveries(ctx context.Context, records []*notification.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO delivery_records (id, notification_id, user_id, channel, status, error_message, delivered_at)
                                         VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for bulk create: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		_, err := stmt.ExecContext(ctx, rec.ID, rec.NotificationID, rec.UserID, rec.Channel, rec.Status, rec.ErrorMessage, rec.DeliveredAt)
		if err != nil {
			return fmt.Errorf("error executing statement for bulk create (delivery for N:%s, U:%s, C:%s): %w", rec.NotificationID, rec.UserID, rec.Channel, err)
		}
	}

	return txn.Commit()
}

// --- DispatchLog Methods ---

func (r *PostgresNotificationRepository) CreateDispatchLog(ctx context.Context, entry *notification.DispatchLog) error {
	query := `INSERT INTO dispatch_logs (notification_id, dispatch_time, success, recipients_count, error_message)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, entry.NotificationID, entry.DispatchTime, entry.Success, entry.RecipientsCount, entry.ErrorMessage).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("error creating dispatch log: %w", err)
	}
	return nil
}
