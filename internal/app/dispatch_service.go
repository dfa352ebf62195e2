// internal/app/dispatch_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meditation_notification_service/internal/domain/audience"
	"meditation_notification_service/internal/domain/notification"
	"meditation_notification_service/internal/domain/push"
	"meditation_notification_service/internal/domain/realtime"
	"meditation_notification_service/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BroadcastEventName is the realtime event emitted once per dispatched
// notification.
const BroadcastEventName = "notification_dispatched"

// NotificationResult is the per-notification entry in a run's result list.
type NotificationResult struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Status         string    `json:"status"` // "success" or "error"
	Deliveries     int       `json:"deliveries,omitempty"`
	Recurring      bool      `json:"recurring,omitempty"`
	Error          string    `json:"error,omitempty"`
}

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Summary aggregates the outcome of one dispatch cycle.
type Summary struct {
	Processed int                  `json:"processed"`
	Results   []NotificationResult `json:"results"`
}

// DispatchRunner is the trigger-facing surface of the dispatch processor,
// shared by the cron scheduler and the HTTP endpoint.
type DispatchRunner interface {
	Run(ctx context.Context) (*Summary, error)
}

// DispatchService selects due notifications, fans them out to their resolved
// recipients across the declared channels, records delivery outcomes, advances
// recurring schedules and announces each dispatched notification on the
// realtime channel.
//
// A cycle claims every notification with status 'scheduled' and send_at <= now
// without taking a lock, so two overlapping runs may double-process a
// notification whose recurrence update has not yet committed. Callers needing
// stronger guarantees must serialize invocations externally.
type DispatchService struct {
	notifRepo        notification.Repository
	subsRepo         push.SubscriptionRepository
	resolver         audience.Resolver
	pushSender       push.Sender
	broadcaster      realtime.Broadcaster
	broadcastChannel string
	logger           *logrus.Logger
	now              func() time.Time
}

func NewDispatchService(
	notifRepo notification.Repository,
	subsRepo push.SubscriptionRepository,
	resolver audience.Resolver,
	pushSender push.Sender,
	broadcaster realtime.Broadcaster,
	broadcastChannel string,
	logger *logrus.Logger,
) *DispatchService {
	return &DispatchService{
		notifRepo:        notifRepo,
		subsRepo:         subsRepo,
		resolver:         resolver,
		pushSender:       pushSender,
		broadcaster:      broadcaster,
		broadcastChannel: broadcastChannel,
		logger:           logger,
		now:              time.Now,
	}
}

// Run executes one dispatch cycle against the current wall-clock time.
// Failure to list due notifications is fatal for the whole run; every other
// failure is contained to the notification it occurred in.
func (s *DispatchService) Run(ctx context.Context) (*Summary, error) {
	timer := time.Now()
	metrics.DispatchRuns.Inc()

	now := s.now()
	due, err := s.notifRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}

	summary := &Summary{
		Processed: len(due),
		Results:   make([]NotificationResult, 0, len(due)),
	}
	for _, n := range due {
		summary.Results = append(summary.Results, s.dispatchOne(ctx, n, now))
	}

	metrics.RunDuration.Observe(time.Since(timer).Seconds())
	s.logger.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"duration":  time.Since(timer).String(),
	}).Info("Dispatch cycle completed")
	return summary, nil
}

// dispatchOne processes a single notification. Any failure inside it is
// absorbed here: a failed dispatch log is written, the error lands in the
// result list, and the caller moves on to the next notification.
func (s *DispatchService) dispatchOne(ctx context.Context, n *notification.Notification, now time.Time) NotificationResult {
	deliveries, err := s.deliver(ctx, n, now)
	if err != nil {
		return s.failNotification(ctx, n, now, err)
	}

	if err := s.advanceSchedule(ctx, n, now); err != nil {
		return s.failNotification(ctx, n, now, err)
	}

	entry := &notification.DispatchLog{
		NotificationID:  n.ID,
		DispatchTime:    now,
		Success:         true,
		RecipientsCount: deliveries,
	}
	if err := s.notifRepo.CreateDispatchLog(ctx, entry); err != nil {
		return s.failNotification(ctx, n, now, err)
	}

	s.announce(ctx, n)

	metrics.NotificationsProcessed.WithLabelValues(resultSuccess).Inc()
	s.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"deliveries":      deliveries,
		"recurring":       n.IsRecurring(),
	}).Info("Notification dispatched")

	return NotificationResult{
		NotificationID: n.ID,
		Status:         resultSuccess,
		Deliveries:     deliveries,
		Recurring:      n.IsRecurring(),
	}
}

// deliver resolves the audience, builds one delivery record per (recipient,
// channel) pair and persists them in a single batch. It returns the number of
// records written.
func (s *DispatchService) deliver(ctx context.Context, n *notification.Notification, now time.Time) (int, error) {
	recipients, err := s.resolver.Resolve(ctx, n.AudienceType, n.AudienceFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	records := make([]*notification.DeliveryRecord, 0, len(recipients)*len(n.Channels))
	for _, recipient := range recipients {
		for _, channel := range n.Channels {
			switch channel {
			case notification.ChannelInApp:
				// In-app delivery is the record itself: the front-end reads
				// the inbox straight from delivery_records.
				records = append(records, &notification.DeliveryRecord{
					NotificationID: n.ID,
					UserID:         recipient.UserID,
					Channel:        notification.ChannelInApp,
					Status:         notification.DeliverySent,
					DeliveredAt:    now,
				})
				metrics.Deliveries.WithLabelValues(string(notification.ChannelInApp), string(notification.DeliverySent)).Inc()

			case notification.ChannelWebPush:
				pushRecords, err := s.deliverWebPush(ctx, n, recipient.UserID, now)
				if err != nil {
					return 0, err
				}
				records = append(records, pushRecords...)

			default:
				// Unrecognized channel kinds produce no record and no error.
			}
		}
	}

	if err := s.notifRepo.BulkCreateDeliveries(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to persist delivery records: %w", err)
	}
	return len(records), nil
}

// deliverWebPush attempts delivery to every registered endpoint of one
// recipient. A send failure is captured on its record and does not abort the
// remaining endpoints; a subscription lookup failure fails the notification.
func (s *DispatchService) deliverWebPush(ctx context.Context, n *notification.Notification, userID uuid.UUID, now time.Time) ([]*notification.DeliveryRecord, error) {
	subs, err := s.subsRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions for user %s: %w", userID, err)
	}

	msg := push.Message{NotificationID: n.ID, Title: n.Title, Body: n.Body}
	records := make([]*notification.DeliveryRecord, 0, len(subs))
	for _, sub := range subs {
		record := &notification.DeliveryRecord{
			NotificationID: n.ID,
			UserID:         userID,
			Channel:        notification.ChannelWebPush,
			Status:         notification.DeliverySent,
			DeliveredAt:    now,
		}
		if err := s.pushSender.Send(ctx, sub, msg); err != nil {
			record.Status = notification.DeliveryFailed
			record.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
			s.logger.WithFields(logrus.Fields{
				"notification_id": n.ID,
				"user_id":         userID,
				"endpoint":        sub.Endpoint,
			}).WithError(err).Warn("Web push delivery failed")
		}
		metrics.Deliveries.WithLabelValues(string(notification.ChannelWebPush), string(record.Status)).Inc()
		records = append(records, record)
	}
	return records, nil
}

// advanceSchedule reschedules a recurring notification to its next occurrence
// or terminally marks a one-shot notification sent.
func (s *DispatchService) advanceSchedule(ctx context.Context, n *notification.Notification, now time.Time) error {
	if n.IsRecurring() {
		next := notification.NextOccurrence(n.SendAt, n.RepeatRule)
		if err := s.notifRepo.Reschedule(ctx, n.ID, next, now); err != nil {
			return fmt.Errorf("failed to reschedule notification: %w", err)
		}
		return nil
	}
	if err := s.notifRepo.MarkSent(ctx, n.ID, now); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// announce publishes the realtime event for a dispatched notification.
// Best-effort: failures are logged and never fail the notification.
func (s *DispatchService) announce(ctx context.Context, n *notification.Notification) {
	payload := map[string]string{
		"id":    n.ID.String(),
		"title": n.Title,
		"body":  n.Body,
	}
	if err := s.broadcaster.Broadcast(ctx, s.broadcastChannel, BroadcastEventName, payload); err != nil {
		metrics.BroadcastFailures.Inc()
		s.logger.WithField("notification_id", n.ID).WithError(err).Warn("Realtime broadcast failed")
	}
}

// failNotification records the failure of one notification: a failed dispatch
// log (best-effort) and an error entry for the result list. The notification
// keeps its original status and send_at, so the next cycle naturally retries it.
func (s *DispatchService) failNotification(ctx context.Context, n *notification.Notification, now time.Time, cause error) NotificationResult {
	s.logger.WithField("notification_id", n.ID).WithError(cause).Error("Notification dispatch failed")

	entry := &notification.DispatchLog{
		NotificationID: n.ID,
		DispatchTime:   now,
		Success:        false,
		ErrorMessage:   sql.NullString{String: cause.Error(), Valid: true},
	}
	if err := s.notifRepo.CreateDispatchLog(ctx, entry); err != nil {
		s.logger.WithField("notification_id", n.ID).WithError(err).Warn("Could not write failed dispatch log")
	}

	metrics.NotificationsProcessed.WithLabelValues(resultError).Inc()
	return NotificationResult{
		NotificationID: n.ID,
		Status:         resultError,
		Error:          cause.Error(),
	}
}
