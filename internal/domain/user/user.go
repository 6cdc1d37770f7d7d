package user

import (
	"context"
	"database/sql"
	"time"
)

// User is an account owning feeding schedules.
type User struct {
	ID          int64
	Email       string
	PhoneNumber sql.NullString // SMS contact, optional
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines read access to users needed by the notifier.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}
