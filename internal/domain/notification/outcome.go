// internal/domain/notification/outcome.go
package notification

import (
	"context"
	"errors"
)

var (
	ErrMissingContact    = errors.New("no phone number configured")
	ErrGatewayFailure    = errors.New("failed to send SMS")
	ErrSourceUnavailable = errors.New("feeding schedule source unavailable")
)

// FailureKind names a per-record failure in results.
type FailureKind string

const (
	KindMissingContact FailureKind = "MissingContact"
	KindGatewayFailure FailureKind = "GatewayFailure"
)

// Delivery is a reminder that was sent during a scan.
type Delivery struct {
	RecordID    int64  `json:"recordId"`
	UserID      int64  `json:"userId"`
	PhoneNumber string `json:"phoneNumber"` // masked
	Time        string `json:"time"`
	Message     string `json:"message"` // truncated preview
}

// Failure is a matching record that could not be notified.
type Failure struct {
	RecordID int64       `json:"recordId"`
	UserID   int64       `json:"userId"`
	Kind     FailureKind `json:"kind"`
	Error    string      `json:"error"`
}

// ScanResult summarizes one scan over all feeding records.
type ScanResult struct {
	CurrentTime       string     `json:"currentTime"`
	NotificationsSent int        `json:"notificationsSent"`
	Details           []Delivery `json:"details"`
	Errors            []Failure  `json:"errors,omitempty"`
}

// CountKind returns how many failures of the given kind the scan produced.
func (r ScanResult) CountKind(kind FailureKind) int {
	n := 0
	for _, f := range r.Errors {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Alerter pushes operational alerts to an operator channel.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}
