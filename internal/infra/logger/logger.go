// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"fishcare_notifier/internal/domain/sms"
	"fishcare_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// phoneFields are log fields that may carry a destination number.
var phoneFields = []string{"phone", "to"}

// Init initializes the global logger based on application configuration.
func Init(cfg *config.AppConfig) {
	configure(Log, cfg.LogLevel, cfg.Environment, os.Stdout)
	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
}

func configure(l *logrus.Logger, level, environment string, out io.Writer) {
	l.SetOutput(out)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	switch strings.ToLower(environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l.ReplaceHooks(make(logrus.LevelHooks))
	l.AddHook(phoneMaskHook{})
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

// phoneMaskHook masks phone numbers that reach a log line unmasked.
type phoneMaskHook struct{}

func (phoneMaskHook) Levels() []logrus.Level { return logrus.AllLevels }

func (phoneMaskHook) Fire(entry *logrus.Entry) error {
	for _, key := range phoneFields {
		v, ok := entry.Data[key].(string)
		if !ok || strings.Contains(v, "****") {
			continue
		}
		entry.Data[key] = sms.MaskPhone(v)
	}
	return nil
}
