package scheduler

import (
	"context"
	"fmt"
	"time"

	"fishcare_notifier/internal/app"
	"fishcare_notifier/internal/domain/feeding"
	"fishcare_notifier/internal/domain/notification"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// checkTimeout bounds one scan so a stuck gateway cannot pile up runs.
const checkTimeout = 50 * time.Second

type FeedingScheduler struct {
	cronEngine         *cron.Cron
	reminders          app.ReminderService
	tracker            *notification.Tracker
	alerter            notification.Alerter
	logger             *logrus.Entry
	location           *time.Location
	cronSpecCheck      string
	cronSpecDailyReset string
	now                func() time.Time
}

func NewFeedingScheduler(
	reminders app.ReminderService,
	tracker *notification.Tracker, // same instance the reminder service uses
	alerter notification.Alerter, // may be nil
	logger *logrus.Entry,
	location *time.Location,
	cronSpecCheck string, // e.g. "* * * * *" (every minute)
	cronSpecDailyReset string, // e.g. "0 0 * * *" (midnight)
) *FeedingScheduler {
	if location == nil {
		location = time.Local
	}
	return &FeedingScheduler{
		// SkipIfStillRunning keeps at most one periodic scan in flight.
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		reminders:          reminders,
		tracker:            tracker,
		alerter:            alerter,
		logger:             logger,
		location:           location,
		cronSpecCheck:      cronSpecCheck,
		cronSpecDailyReset: cronSpecDailyReset,
		now:                time.Now,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *FeedingScheduler) Start() error {
	s.logger.Info("Starting feeding scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecCheck, s.runFeedingCheck); err != nil {
		return fmt.Errorf("could not add feeding check cron job: %w", err)
	}

	if _, err := s.cronEngine.AddFunc(s.cronSpecDailyReset, s.runDailyReset); err != nil {
		return fmt.Errorf("could not add daily reset cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"check_spec": s.cronSpecCheck,
		"reset_spec": s.cronSpecDailyReset,
	}).Info("Feeding scheduler started - checking every minute")
	return nil
}

func (s *FeedingScheduler) runFeedingCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	result, err := s.reminders.RunScanCycle(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Feeding schedule check failed")
		s.alert(ctx, "Feeding schedule check failed: "+err.Error())
		return
	}

	if result.NotificationsSent > 0 {
		s.logger.WithFields(logrus.Fields{
			"sent":         result.NotificationsSent,
			"current_time": result.CurrentTime,
		}).Info("SMS notification(s) sent")
	}
	if failed := result.CountKind(notification.KindGatewayFailure); failed > 0 {
		s.alert(ctx, fmt.Sprintf("Feeding reminders at %s: %d SMS failed to send.", result.CurrentTime, failed))
	}
}

// runDailyReset fires in the same minute as a feeding check, so claims on the
// current slot are kept.
func (s *FeedingScheduler) runDailyReset() {
	now := s.now().In(s.location)
	s.tracker.ResetKeepingSlot(now, feeding.SlotAt(now))
	s.logger.Info("Daily tracking reset")
}

func (s *FeedingScheduler) alert(ctx context.Context, text string) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.Alert(ctx, text); err != nil {
		s.logger.WithError(err).Warn("Could not deliver admin alert")
	}
}

// Stop stops scheduling new runs and waits for a running scan to finish.
func (s *FeedingScheduler) Stop() {
	s.logger.Info("Stopping feeding scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Feeding scheduler gracefully stopped.")
}
