// Command fishcare runs the SmartFishCare feeding reminder notifier.
//
// Usage:
//
//	fishcare serve
//	fishcare check
//	fishcare records add --user 1 --size Medium --food Pellets --time 18:30 --quantity "2 scoops"
//	fishcare records list --user 1
//	fishcare records delete --user 1 --id 7
//	fishcare sms send --user 1 --message "Tank cleaning today"
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fishcare_notifier/internal/app"
	"fishcare_notifier/internal/domain/notification"
	"fishcare_notifier/internal/infra/config"
	idb "fishcare_notifier/internal/infra/database"
	"fishcare_notifier/internal/infra/logger"
	"fishcare_notifier/internal/infra/semaphore"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "fishcare",
		Short:         "SmartFishCare feeding reminder notifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(recordsCmd())
	root.AddCommand(smsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// deps bundles what every command needs once configuration is loaded.
type deps struct {
	cfg *config.AppConfig
	db  *sql.DB
}

// withDeps loads config, initialises logging, connects to Postgres and runs fn
// with a context cancelled on SIGINT/SIGTERM.
func withDeps(fn func(ctx context.Context, rt *deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer db.Close()
	logger.Log.Debug("Database connection established successfully.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := idb.VerifySchema(ctx, db); err != nil {
		return err
	}

	return fn(ctx, &deps{cfg: cfg, db: db})
}

func (rt *deps) gateway() *semaphore.Gateway {
	if rt.cfg.SemaphoreAPIKey == "" {
		logger.Log.Warn("SEMAPHORE_API_KEY is not set, every SMS send will fail")
	}
	return semaphore.NewGateway(semaphore.Config{
		APIURL:            rt.cfg.SemaphoreAPIURL,
		APIKey:            rt.cfg.SemaphoreAPIKey,
		SenderName:        rt.cfg.SemaphoreSenderName,
		RequestsPerMinute: rt.cfg.SMSRatePerMinute,
		Timeout:           rt.cfg.SMSSendTimeout,
	})
}

func (rt *deps) reminderService(tracker *notification.Tracker) *app.FeedingReminderServiceImpl {
	return app.NewFeedingReminderService(
		idb.NewPostgresFeedingRepository(rt.db),
		rt.gateway(),
		tracker,
		logger.WithComponent("reminders"),
		app.ReminderOptions{
			Brand:        rt.cfg.ReminderBrand,
			DefaultPhone: rt.cfg.DefaultPhoneNumber,
			SendTimeout:  rt.cfg.SMSSendTimeout,
			Location:     rt.cfg.Location,
		},
	)
}
