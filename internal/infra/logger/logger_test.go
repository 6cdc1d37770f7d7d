package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"fishcare_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

func TestConfigure(t *testing.T) {
	l := logrus.New()
	configure(l, "verbose", "development", io.Discard)
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("invalid level should fall back to info, got %s", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("development should log text, got %T", l.Formatter)
	}

	configure(l, "debug", "production", io.Discard)
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("production should log JSON, got %T", l.Formatter)
	}
	if n := len(l.Hooks[logrus.InfoLevel]); n != 1 {
		t.Fatalf("hooks = %d after reconfiguring, want 1", n)
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return line
}

func TestWithComponent(t *testing.T) {
	Init(&config.AppConfig{LogLevel: "info", Environment: "production"})
	var buf bytes.Buffer
	Log.SetOutput(&buf)

	WithComponent("scheduler").Info("tick")

	line := decodeLine(t, &buf)
	if line["component"] != "scheduler" || line["msg"] != "tick" {
		t.Fatalf("line = %v", line)
	}
}

func TestPhoneNumbersAreMasked(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"raw phone", "phone", "+639171234567", "+639****4567"},
		{"raw destination", "to", "09171234567", "0917****4567"},
		{"already masked", "phone", "+639****4567", "+639****4567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logrus.New()
			var buf bytes.Buffer
			configure(l, "info", "production", &buf)

			l.WithField(tt.field, tt.value).Info("sent")

			if got := decodeLine(t, &buf)[tt.field]; got != tt.want {
				t.Fatalf("%s = %v, want %s", tt.field, got, tt.want)
			}
		})
	}
}
