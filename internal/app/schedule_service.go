package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fishcare_notifier/internal/domain/feeding"
	idb "fishcare_notifier/internal/infra/database"
)

// Application-level errors for feeding schedule management
var ErrMissingField = errors.New("fish size, food type and feeding time are required")
var ErrInvalidFishSize = errors.New("invalid fish size, expected Small, Medium or Large")
var ErrInvalidFeedingTime = errors.New("invalid feeding time, expected HH:MM or HH:MM:SS")

// NewFeedingRecord is the input for adding a schedule.
type NewFeedingRecord struct {
	FishSize    string
	FoodType    string
	FeedingTime string
	Quantity    string
	Notes       string
}

type ScheduleService struct {
	feedingRepo feeding.Repository
}

func NewScheduleService(fr feeding.Repository) *ScheduleService {
	return &ScheduleService{feedingRepo: fr}
}

// AddRecord validates and stores a new daily feeding schedule for a user.
func (s *ScheduleService) AddRecord(ctx context.Context, userID int64, in NewFeedingRecord) (*feeding.Record, error) {
	fishSize := strings.TrimSpace(in.FishSize)
	foodType := strings.TrimSpace(in.FoodType)
	if fishSize == "" || foodType == "" || strings.TrimSpace(in.FeedingTime) == "" {
		return nil, ErrMissingField
	}

	size := feeding.FishSize(fishSize)
	if !size.Valid() {
		return nil, ErrInvalidFishSize
	}

	feedingTime, err := feeding.ParseTimeOfDay(in.FeedingTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeedingTime, err)
	}

	record := &feeding.Record{
		UserID:      userID,
		FishSize:    size,
		FoodType:    foodType,
		FeedingTime: feedingTime,
		Quantity:    optionalString(in.Quantity),
		Notes:       optionalString(in.Notes),
	}
	if err := s.feedingRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create feeding record in repository: %w", err)
	}
	return record, nil
}

// ListRecords returns a user's schedules ordered by feeding time.
func (s *ScheduleService) ListRecords(ctx context.Context, userID int64) ([]*feeding.Record, error) {
	records, err := s.feedingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeding records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a schedule only if it belongs to userID.
func (s *ScheduleService) DeleteRecord(ctx context.Context, userID, recordID int64) error {
	err := s.feedingRepo.Delete(ctx, recordID, userID)
	if err != nil {
		if errors.Is(err, idb.ErrFeedingRecordNotFound) {
			return idb.ErrFeedingRecordNotFound
		}
		return fmt.Errorf("failed to delete feeding record: %w", err)
	}
	return nil
}

func optionalString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
