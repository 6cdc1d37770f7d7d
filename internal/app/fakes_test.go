package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"

	"fishcare_notifier/internal/domain/feeding"
	"fishcare_notifier/internal/domain/user"
	idb "fishcare_notifier/internal/infra/database"

	"github.com/sirupsen/logrus"
)

type fakeFeedingRepo struct {
	mu      sync.Mutex
	records []feeding.ScheduledFeeding
	listErr error
	nextID  int64
	created []*feeding.Record
}

func (f *fakeFeedingRepo) ListWithContacts(ctx context.Context) ([]feeding.ScheduledFeeding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]feeding.ScheduledFeeding, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeFeedingRepo) Create(ctx context.Context, r *feeding.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.created = append(f.created, r)
	return nil
}

func (f *fakeFeedingRepo) ListByUser(ctx context.Context, userID int64) ([]*feeding.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*feeding.Record
	for _, r := range f.created {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFeedingRepo) Delete(ctx context.Context, id, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.created {
		if r.ID == id && r.UserID == userID {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return idb.ErrFeedingRecordNotFound
}

type sentMessage struct {
	to   string
	body string
}

type fakeGateway struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo map[string]error
}

func (g *fakeGateway) Send(ctx context.Context, to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failTo[to]; ok {
		return err
	}
	g.sent = append(g.sent, sentMessage{to: to, body: body})
	return nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

type fakeUserRepo struct {
	users map[int64]*user.User
	err   error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	return u, nil
}

var errBoom = errors.New("boom")

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func phone(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func scheduled(id, userID int64, at, number string) feeding.ScheduledFeeding {
	return feeding.ScheduledFeeding{
		Record: feeding.Record{
			ID:          id,
			UserID:      userID,
			FishSize:    feeding.FishSizeSmall,
			FoodType:    "Flakes",
			FeedingTime: at,
		},
		PhoneNumber: phone(number),
	}
}
