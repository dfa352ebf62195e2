package scheduler

import (
	"context"
	"time"

	"meditation_notification_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DispatchScheduler triggers periodic dispatch cycles. Each run gets its own
// bounded context so a hung dependency cannot stall the cron engine forever.
type DispatchScheduler struct {
	cronEngine *cron.Cron
	runner     app.DispatchRunner
	logger     *logrus.Logger
	cronSpec   string
	runTimeout time.Duration
}

func NewDispatchScheduler(
	runner app.DispatchRunner,
	logger *logrus.Logger,
	cronSpec string, // e.g., "* * * * *" (every minute)
	runTimeout time.Duration,
) *DispatchScheduler {
	return &DispatchScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runner:     runner,
		logger:     logger,
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
	}
}

func (s *DispatchScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("Cron job triggered for notification dispatch")
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		summary, err := s.runner.Run(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Dispatch run failed")
			return
		}
		if summary.Processed > 0 {
			s.logger.WithField("processed", summary.Processed).Info("Scheduled dispatch run finished")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Dispatch scheduler started")
	return nil
}

func (s *DispatchScheduler) Stop() {
	s.logger.Info("Stopping dispatch scheduler...")
	ctx := s.cronEngine.Stop() // Stops new runs, waits for the running one.
	<-ctx.Done()
	s.logger.Info("Dispatch scheduler gracefully stopped")
}
