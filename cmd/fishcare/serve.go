package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fishcare_notifier/internal/domain/notification"
	"fishcare_notifier/internal/infra/httpapi"
	"fishcare_notifier/internal/infra/logger"
	"fishcare_notifier/internal/infra/scheduler"
	"fishcare_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cron scan, the HTTP check endpoint and the optional admin bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(runServe)
		},
	}
}

func runServe(ctx context.Context, rt *deps) error {
	cfg := rt.cfg
	mainLogger := logger.WithComponent("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	// One tracker for every trigger, so a slot is never notified twice.
	tracker := notification.NewTracker()
	reminders := rt.reminderService(tracker)

	var (
		bot     *telebot.Bot
		alerter notification.Alerter
	)
	if cfg.TelegramEnabled() {
		botLogger := logger.WithComponent("telegram")
		var err error
		bot, err = telegram.NewBot(cfg.TelegramToken, false, func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		})
		if err != nil {
			return err
		}
		if a := telegram.NewAlerter(bot, cfg.AdminTelegramID); a != nil {
			alerter = a
		}
		telegram.RegisterAdminCommands(ctx, bot, reminders, tracker, cfg.AdminTelegramID, botLogger)
		mainLogger.Info("Telegram admin commands registered")
	} else {
		mainLogger.Info("Telegram alerts disabled")
	}

	feedingScheduler := scheduler.NewFeedingScheduler(
		reminders,
		tracker,
		alerter,
		logger.WithComponent("scheduler"),
		cfg.Location,
		cfg.CronSpecFeedingCheck,
		cfg.CronSpecDailyReset,
	)
	if err := feedingScheduler.Start(); err != nil {
		return err
	}
	defer feedingScheduler.Stop()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(reminders, logger.WithComponent("http"), httpapi.Options{
			CORSAllowOrigins:  cfg.CORSAllowOrigins,
			RateLimitRequests: cfg.CheckRateLimitRequests,
			RateLimitWindow:   cfg.CheckRateLimitWindow,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if bot != nil {
		go bot.Start()
		defer bot.Stop()
	}

	var runErr error
	select {
	case <-ctx.Done():
		mainLogger.Info("Shutting down application...")
	case runErr = <-errCh:
		mainLogger.WithError(runErr).Error("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server shutdown")
	}
	mainLogger.Info("Application shut down gracefully.")
	return runErr
}
