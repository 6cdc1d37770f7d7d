// internal/infra/database/postgres_feeding_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fishcare_notifier/internal/domain/feeding"
)

var ErrFeedingRecordNotFound = errors.New("feeding record not found or access denied")

type PostgresFeedingRepository struct {
	db *sql.DB
}

func NewPostgresFeedingRepository(db *sql.DB) *PostgresFeedingRepository {
	return &PostgresFeedingRepository{db: db}
}

const feedingColumns = `f.id, f.user_id, f.fish_size, f.food_type, f.feeding_time, f.quantity, f.notes, f.created_at, f.updated_at`

func (r *PostgresFeedingRepository) ListWithContacts(ctx context.Context) ([]feeding.ScheduledFeeding, error) {
	query := `SELECT ` + feedingColumns + `, u.phone_number
               FROM feeding_records f
               JOIN users u ON u.id = f.user_id
               ORDER BY f.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying feeding records with contacts: %w", err)
	}
	defer rows.Close()

	records := make([]feeding.ScheduledFeeding, 0)
	for rows.Next() {
		var sf feeding.ScheduledFeeding
		if err := rows.Scan(
			&sf.ID, &sf.UserID, &sf.FishSize, &sf.FoodType, &sf.FeedingTime,
			&sf.Quantity, &sf.Notes, &sf.CreatedAt, &sf.UpdatedAt, &sf.PhoneNumber,
		); err != nil {
			return nil, fmt.Errorf("error scanning feeding record row: %w", err)
		}
		records = append(records, sf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feeding record rows: %w", err)
	}
	return records, nil
}

func (r *PostgresFeedingRepository) Create(ctx context.Context, rec *feeding.Record) error {
	query := `INSERT INTO feeding_records (user_id, fish_size, food_type, feeding_time, quantity, notes)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, rec.UserID, rec.FishSize, rec.FoodType, rec.FeedingTime, rec.Quantity, rec.Notes).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating feeding record: %w", err)
	}
	return nil
}

func (r *PostgresFeedingRepository) ListByUser(ctx context.Context, userID int64) ([]*feeding.Record, error) {
	query := `SELECT ` + feedingColumns + `
               FROM feeding_records f
               WHERE f.user_id = $1
               ORDER BY f.feeding_time ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing feeding records for user: %w", err)
	}
	defer rows.Close()

	records := make([]*feeding.Record, 0)
	for rows.Next() {
		rec := &feeding.Record{}
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.FishSize, &rec.FoodType, &rec.FeedingTime,
			&rec.Quantity, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning feeding record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feeding records: %w", err)
	}
	return records, nil
}

// Delete removes a record only when it belongs to userID.
func (r *PostgresFeedingRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeding_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting feeding record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading deleted row count: %w", err)
	}
	if n == 0 {
		return ErrFeedingRecordNotFound
	}
	return nil
}
