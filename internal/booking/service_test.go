package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"glowup/internal/catalog"
	"glowup/internal/models"
	"glowup/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	bookings []models.Booking
	seq      int

	updateDelay time.Duration
}

func (f *fakeStore) Create(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		f.seq++
		b.ID = fmt.Sprintf("bk-%d", f.seq)
	}
	f.bookings = append([]models.Booking{*b}, f.bookings...)
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id, status string) error {
	if f.updateDelay > 0 {
		select {
		case <-time.After(f.updateDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			if !models.CanTransition(f.bookings[i].Status, status) {
				return store.ErrInvalidTransition
			}
			f.bookings[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) List(ctx context.Context) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Booking, len(f.bookings))
	copy(out, f.bookings)
	return out, nil
}

func (f *fakeStore) Subscribe(ctx context.Context, fn func([]models.Booking)) (func(), error) {
	return func() {}, nil
}

func (f *fakeStore) Backend() string { return "fake" }
func (f *fakeStore) Close() error    { return nil }

func newTestService(t *testing.T, fs *fakeStore) *Service {
	t.Helper()

	cat, err := catalog.New(
		[]models.Service{{ID: "s1", Name: "Bridal Makeup"}},
		[]models.Artist{{ID: "a1", Name: "Minh Anh"}},
	)
	require.NoError(t, err)

	logger := zerolog.Nop()
	return NewService(fs, cat, nil, &logger, time.Second)
}

func validBooking() *models.Booking {
	return &models.Booking{
		ServiceID:     "s1",
		ArtistID:      "a1",
		CustomerName:  "A",
		CustomerPhone: "0900000000",
		Date:          time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		Time:          "10:00",
	}
}

func TestServiceValidate(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	tests := []struct {
		name   string
		mutate func(*models.Booking)
	}{
		{"empty name", func(b *models.Booking) { b.CustomerName = "  " }},
		{"empty phone", func(b *models.Booking) { b.CustomerPhone = "" }},
		{"unknown service", func(b *models.Booking) { b.ServiceID = "s9" }},
		{"missing service", func(b *models.Booking) { b.ServiceID = "" }},
		{"unknown artist", func(b *models.Booking) { b.ArtistID = "a9" }},
		{"bad date", func(b *models.Booking) { b.Date = "10/01/2025" }},
		{"past date", func(b *models.Booking) { b.Date = "2020-01-01" }},
		{"bad time", func(b *models.Booking) { b.Time = "10am" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)
			err := svc.Validate(b)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.NoError(t, svc.Validate(validBooking()))
}

func TestServiceCreateForcesInitialState(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)

	b := validBooking()
	b.Status = models.StatusCompleted // must be ignored
	b.CreatedAt = 42

	require.NoError(t, svc.Create(context.Background(), b))

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Greater(t, b.CreatedAt, int64(42))
}

func TestServiceCreateRejectsInvalid(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)

	b := validBooking()
	b.CustomerName = ""
	err := svc.Create(context.Background(), b)
	assert.ErrorIs(t, err, ErrValidation)

	bookings, _ := fs.List(context.Background())
	assert.Empty(t, bookings, "no record must be created on validation failure")
}

func TestServiceTransition(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)
	ctx := context.Background()

	b := validBooking()
	require.NoError(t, svc.Create(ctx, b))

	t.Run("happy path", func(t *testing.T) {
		require.NoError(t, svc.Transition(ctx, b.ID, models.StatusConfirmed))
		bookings, _ := fs.List(ctx)
		assert.Equal(t, models.StatusConfirmed, bookings[0].Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		err := svc.Transition(ctx, b.ID, "rejected")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := svc.Transition(ctx, "nonexistent-id", models.StatusConfirmed)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("illegal transition", func(t *testing.T) {
		err := svc.Transition(ctx, b.ID, models.StatusCancelled)
		assert.ErrorIs(t, err, store.ErrInvalidTransition)
	})
}

func TestServiceTransitionInFlightGuard(t *testing.T) {
	fs := &fakeStore{updateDelay: 300 * time.Millisecond}
	svc := newTestService(t, fs)
	ctx := context.Background()

	b := validBooking()
	require.NoError(t, svc.Create(ctx, b))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Transition(ctx, b.ID, models.StatusConfirmed)
		}()
	}
	wg.Wait()
	close(errs)

	var inFlight, ok int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrUpdateInFlight):
			inFlight++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, inFlight)
}

func TestServiceTransitionTimeoutReleasesGuard(t *testing.T) {
	fs := &fakeStore{updateDelay: 5 * time.Second}
	cat, err := catalog.New(
		[]models.Service{{ID: "s1"}},
		[]models.Artist{{ID: "a1"}},
	)
	require.NoError(t, err)
	logger := zerolog.Nop()
	svc := NewService(fs, cat, nil, &logger, 100*time.Millisecond)
	ctx := context.Background()

	b := validBooking()
	require.NoError(t, svc.Create(ctx, b))

	err = svc.Transition(ctx, b.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// guard must be released after the timeout
	fs.updateDelay = 0
	assert.NoError(t, svc.Transition(ctx, b.ID, models.StatusConfirmed))
}
