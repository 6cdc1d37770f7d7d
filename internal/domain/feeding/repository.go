package feeding

import (
	"context"
)

// Repository defines the operations for persisting and retrieving feeding records.
type Repository interface {
	// ListWithContacts is the snapshot read used by the reminder scan.
	// It returns every record joined with the owner's phone number, unfiltered.
	ListWithContacts(ctx context.Context) ([]ScheduledFeeding, error)

	Create(ctx context.Context, record *Record) error
	ListByUser(ctx context.Context, userID int64) ([]*Record, error)
	Delete(ctx context.Context, id, userID int64) error
}
