// internal/domain/feeding/record.go
package feeding

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// FishSize is the size class a feeding schedule is written for.
type FishSize string

const (
	FishSizeSmall  FishSize = "Small"
	FishSizeMedium FishSize = "Medium"
	FishSizeLarge  FishSize = "Large"
)

// Valid reports whether s is one of the known size classes.
func (s FishSize) Valid() bool {
	switch s {
	case FishSizeSmall, FishSizeMedium, FishSizeLarge:
		return true
	}
	return false
}

// Record is a daily recurring feeding schedule owned by a user.
// Corresponds to the 'feeding_records' table.
type Record struct {
	ID          int64
	UserID      int64
	FishSize    FishSize
	FoodType    string
	FeedingTime string         // "HH:MM" or "HH:MM:SS", recurs every day
	Quantity    sql.NullString // optional, e.g. "2 scoops"
	Notes       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduledFeeding is a record joined with its owner's SMS contact.
type ScheduledFeeding struct {
	Record
	PhoneNumber sql.NullString
}

// Slot returns the HH:MM portion of the feeding time. Seconds are ignored.
func (r Record) Slot() string {
	return TruncateToMinute(r.FeedingTime)
}

// TruncateToMinute cuts a time-of-day string down to its "HH:MM" prefix.
func TruncateToMinute(timeOfDay string) string {
	if len(timeOfDay) < 5 {
		return timeOfDay
	}
	return timeOfDay[:5]
}

// ParseTimeOfDay validates a "HH:MM" or "HH:MM:SS" value and returns it zero-padded,
// so "9:05" is stored as "09:05" and lines up with SlotAt.
func ParseTimeOfDay(value string) (string, error) {
	value = strings.TrimSpace(value)
	layout := "15:04"
	if strings.Count(value, ":") == 2 {
		layout = "15:04:05"
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return parsed.Format(layout), nil
}

// SlotAt formats t as the "HH:MM" slot it falls into.
func SlotAt(t time.Time) string {
	return t.Format("15:04")
}
