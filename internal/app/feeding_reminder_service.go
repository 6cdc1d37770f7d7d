// internal/app/feeding_reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fishcare_notifier/internal/domain/feeding"
	"fishcare_notifier/internal/domain/notification"
	"fishcare_notifier/internal/domain/sms"

	"github.com/sirupsen/logrus"
)

const (
	defaultBrand       = "SmartFishCare"
	defaultSendTimeout = 5 * time.Second
	messagePreviewLen  = 50
)

// ReminderService runs the feeding reminder scan.
// Every trigger (cron, HTTP, admin command) calls the same implementation.
type ReminderService interface {
	RunScanCycle(ctx context.Context) (*notification.ScanResult, error)
}

// ReminderOptions carries the externally supplied settings of the reminder service.
type ReminderOptions struct {
	Brand        string         // prefix of every reminder, e.g. "SmartFishCare"
	DefaultPhone string         // used when the owner has no phone number
	SendTimeout  time.Duration  // per gateway call
	Location     *time.Location // zone used to compute the current HH:MM
	Clock        func() time.Time
}

// FeedingReminderServiceImpl implements ReminderService.
type FeedingReminderServiceImpl struct {
	feedingRepo  feeding.Repository
	gateway      sms.Gateway
	tracker      *notification.Tracker
	logger       *logrus.Entry
	brand        string
	defaultPhone string
	sendTimeout  time.Duration
	location     *time.Location
	now          func() time.Time
}

func NewFeedingReminderService(
	fr feeding.Repository,
	gw sms.Gateway,
	tracker *notification.Tracker, // must be the process-wide instance
	logger *logrus.Entry,
	opts ReminderOptions,
) *FeedingReminderServiceImpl {
	s := &FeedingReminderServiceImpl{
		feedingRepo:  fr,
		gateway:      gw,
		tracker:      tracker,
		logger:       logger,
		brand:        opts.Brand,
		defaultPhone: strings.TrimSpace(opts.DefaultPhone),
		sendTimeout:  opts.SendTimeout,
		location:     opts.Location,
		now:          opts.Clock,
	}
	if s.brand == "" {
		s.brand = defaultBrand
	}
	if s.sendTimeout <= 0 {
		s.sendTimeout = defaultSendTimeout
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RunScanCycle checks every feeding record against the current minute and sends
// at most one SMS per (record, slot) per day. Per-record problems end up in the
// result; only a failed record fetch aborts the scan.
func (s *FeedingReminderServiceImpl) RunScanCycle(ctx context.Context) (*notification.ScanResult, error) {
	now := s.now().In(s.location)
	currentTime := feeding.SlotAt(now)
	log := s.logger.WithField("current_time", currentTime)

	records, err := s.feedingRepo.ListWithContacts(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list feeding records")
		return nil, fmt.Errorf("%w: %w", notification.ErrSourceUnavailable, err)
	}

	if s.tracker.ResetIfNeeded(now) {
		log.Info("Daily notification tracking reset")
	}

	result := &notification.ScanResult{
		CurrentTime: currentTime,
		Details:     []notification.Delivery{},
	}

	for _, rec := range records {
		if rec.Slot() != currentTime {
			continue
		}
		recLog := log.WithFields(logrus.Fields{"record_id": rec.ID, "user_id": rec.UserID})

		if !s.tracker.Claim(rec.UserID, rec.ID, currentTime) {
			recLog.Debug("Skipping duplicate notification")
			continue
		}

		delivery, failure := s.dispatch(ctx, rec, currentTime, recLog)
		if failure != nil {
			s.tracker.Release(rec.UserID, rec.ID, currentTime)
			result.Errors = append(result.Errors, *failure)
			continue
		}
		result.Details = append(result.Details, *delivery)
	}

	result.NotificationsSent = len(result.Details)
	if result.NotificationsSent > 0 || len(result.Errors) > 0 {
		log.WithFields(logrus.Fields{
			"sent":   result.NotificationsSent,
			"failed": len(result.Errors),
		}).Info("Feeding schedule check finished")
	}
	return result, nil
}

func (s *FeedingReminderServiceImpl) dispatch(ctx context.Context, rec feeding.ScheduledFeeding, currentTime string, log *logrus.Entry) (*notification.Delivery, *notification.Failure) {
	phone := s.resolvePhone(rec)
	if phone == "" {
		log.Warn("No phone number for feeding record owner")
		return nil, &notification.Failure{
			RecordID: rec.ID,
			UserID:   rec.UserID,
			Kind:     notification.KindMissingContact,
			Error:    notification.ErrMissingContact.Error(),
		}
	}
	masked := sms.MaskPhone(phone)
	message := FormatReminder(s.brand, rec.Record, currentTime)

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	err := s.gateway.Send(sendCtx, phone, message)
	cancel()
	if err != nil {
		err = fmt.Errorf("%w: %w", notification.ErrGatewayFailure, err)
		log.WithError(err).WithField("phone", masked).Error("Failed to send feeding reminder")
		return nil, &notification.Failure{
			RecordID: rec.ID,
			UserID:   rec.UserID,
			Kind:     notification.KindGatewayFailure,
			Error:    gatewayReason(err),
		}
	}

	log.WithField("phone", masked).Info("Feeding reminder sent")
	return &notification.Delivery{
		RecordID:    rec.ID,
		UserID:      rec.UserID,
		PhoneNumber: masked,
		Time:        currentTime,
		Message:     preview(message),
	}, nil
}

func (s *FeedingReminderServiceImpl) resolvePhone(rec feeding.ScheduledFeeding) string {
	if rec.PhoneNumber.Valid {
		if p := strings.TrimSpace(rec.PhoneNumber.String); p != "" {
			return p
		}
	}
	return s.defaultPhone
}

// FormatReminder builds the SMS body for a record at the given slot.
// Quantity and notes clauses appear only when present.
func FormatReminder(brand string, rec feeding.Record, currentTime string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Reminder: Time to feed your %s fish! Food: %s.", brand, rec.FishSize, rec.FoodType)
	if rec.Quantity.Valid && rec.Quantity.String != "" {
		fmt.Fprintf(&b, " Quantity: %s.", rec.Quantity.String)
	}
	if rec.Notes.Valid && rec.Notes.String != "" {
		fmt.Fprintf(&b, " Notes: %s.", rec.Notes.String)
	}
	fmt.Fprintf(&b, " Scheduled time: %s.", currentTime)
	return b.String()
}

// preview cuts message to messagePreviewLen characters on a rune boundary.
func preview(message string) string {
	if utf8.RuneCountInString(message) <= messagePreviewLen {
		return message
	}
	runes := []rune(message)
	return string(runes[:messagePreviewLen]) + "..."
}

func gatewayReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return notification.ErrGatewayFailure.Error() + ": timed out"
	}
	return err.Error()
}
