package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fishcare_notifier/internal/app"
	"fishcare_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const checkTimeout = 2 * time.Minute

// RegisterAdminCommands wires the admin chat commands. /check_feeding runs the
// same scan as the cron job and the HTTP endpoint, against the shared tracker.
func RegisterAdminCommands(
	ctx context.Context,
	b *telebot.Bot,
	reminders app.ReminderService,
	tracker *notification.Tracker,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		if c.Sender().ID != adminTelegramID {
			return c.Send("This bot only talks to the FishCare administrator.")
		}
		return c.Send(fmt.Sprintf("Hi %s! Feeding reminders are running. Use /help for commands.", c.Sender().FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		if c.Sender().ID != adminTelegramID {
			return c.Send("No commands are available for you.")
		}
		var help strings.Builder
		help.WriteString("Admin commands:\n\n")
		help.WriteString("/check_feeding - run the feeding reminder check now\n")
		help.WriteString("/status - show today's reminder tracking state\n")
		help.WriteString("/help - show this message")
		return c.Send(help.String())
	})

	b.Handle("/check_feeding", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/check_feeding",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), checkTimeout)
		defer cancel()
		result, err := reminders.RunScanCycle(runCtx)
		if err != nil {
			handlerLogger.WithError(err).Error("Feeding check failed")
			return c.Send("Error checking feeding schedule: " + err.Error())
		}
		return c.Send(FormatScanSummary(result))
	})

	b.Handle("/status", func(c telebot.Context) error {
		if c.Sender().ID != adminTelegramID {
			return c.Send("Error: you are not allowed to run this command.")
		}
		last := tracker.LastResetDate()
		lastText := "never"
		if !last.IsZero() {
			lastText = last.Format("2006-01-02 15:04")
		}
		return c.Send(fmt.Sprintf("Slots notified today: %d\nLast reset: %s", tracker.Size(), lastText))
	})
}

// FormatScanSummary renders a scan result as a short chat message.
func FormatScanSummary(r *notification.ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feeding check at %s: %d reminder(s) sent", r.CurrentTime, r.NotificationsSent)
	if len(r.Errors) == 0 {
		b.WriteString(".")
		return b.String()
	}
	fmt.Fprintf(&b, ", %d failed:", len(r.Errors))
	for _, f := range r.Errors {
		fmt.Fprintf(&b, "\n- record %d (user %d): %s", f.RecordID, f.UserID, f.Error)
	}
	return b.String()
}
