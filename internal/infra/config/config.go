package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string

	SemaphoreAPIKey     string
	SemaphoreSenderName string
	SemaphoreAPIURL     string
	SMSRatePerMinute    int
	SMSSendTimeout      time.Duration

	DefaultPhoneNumber string // Fallback contact when an owner has no phone
	ReminderBrand      string
	Location           *time.Location // Zone the current HH:MM is computed in

	HTTPAddr               string
	CORSAllowOrigins       []string
	CheckRateLimitRequests int
	CheckRateLimitWindow   time.Duration
	TrustProxyHeaders      bool // Only behind a proxy that sets X-Forwarded-For

	CronSpecFeedingCheck string // Periodic scan trigger
	CronSpecDailyReset   string // Midnight clear of the notification tracker

	LogLevel    string
	Environment string

	TelegramToken   string // Optional, enables ops alerts
	AdminTelegramID int64
}

// TelegramEnabled reports whether ops alerts and admin commands are configured.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.AdminTelegramID != 0
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.SemaphoreAPIKey = os.Getenv("SEMAPHORE_API_KEY")
	cfg.SemaphoreSenderName = getString("SEMAPHORE_SENDER_NAME", "SmartFish")
	cfg.SemaphoreAPIURL = getString("SEMAPHORE_API_URL", "https://api.semaphore.co/api/v4/messages")

	if cfg.SMSRatePerMinute, err = getInt("SMS_RATE_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.SMSSendTimeout, err = getDuration("SMS_SEND_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.DefaultPhoneNumber = strings.TrimSpace(os.Getenv("DEFAULT_PHONE_NUMBER"))
	cfg.ReminderBrand = getString("REMINDER_BRAND", "SmartFishCare")

	tz := getString("TIMEZONE", "Local")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.HTTPAddr = getString("HTTP_ADDR", ":8080")
	cfg.CORSAllowOrigins = splitList(getString("CORS_ALLOW_ORIGINS", "*"))
	if cfg.CheckRateLimitRequests, err = getInt("CHECK_RATE_LIMIT_REQUESTS", 30); err != nil {
		return nil, err
	}
	if cfg.CheckRateLimitWindow, err = getDuration("CHECK_RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(os.Getenv("TRUST_PROXY_HEADERS")); v != "" {
		cfg.TrustProxyHeaders, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS: %w", err)
		}
	}

	cfg.CronSpecFeedingCheck = getString("CRON_SPEC_FEEDING_CHECK", "* * * * *") // Default: every minute
	cfg.CronSpecDailyReset = getString("CRON_SPEC_DAILY_RESET", "0 0 * * *")    // Default: midnight

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
