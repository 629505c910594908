package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"glowup/internal/config"
	"glowup/internal/metrics"
	"glowup/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStore is the same-device fallback. The whole collection lives as
// one serialized JSON blob under a single badger key and every write is a
// read-modify-write of that blob. There is no cross-process notification
// channel, so Subscribe polls the blob on a fixed interval and redelivers
// the collection on every tick whether or not it changed.
//
// Two processes writing the same blob race; last write wins. That is an
// accepted limitation of the fallback mode.
type LocalStore struct {
	db           *badger.DB
	pollInterval time.Duration
	logger       *zerolog.Logger

	mu sync.Mutex // serializes read-modify-write within this process
}

func NewLocalStore(cfg config.LocalConfig, logger *zerolog.Logger) (*LocalStore, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	interval := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = models.DefaultPollInterval * time.Millisecond
	}

	logger.Info().Str("path", cfg.Path).Dur("poll_interval", interval).Msg("local store opened")
	return &LocalStore{db: db, pollInterval: interval, logger: logger}, nil
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.readAll()
	if err != nil {
		return err
	}

	// Newest first, matching the stored order subscribers see.
	bookings = append([]models.Booking{*booking}, bookings...)
	if err := s.writeAll(bookings); err != nil {
		return err
	}

	metrics.IncBookingCreated()
	return nil
}

func (s *LocalStore) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.readAll()
	if err != nil {
		return err
	}

	idx := -1
	for i := range bookings {
		if bookings[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	if !models.CanTransition(bookings[idx].Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, bookings[idx].Status, status)
	}

	bookings[idx].Status = status
	if err := s.writeAll(bookings); err != nil {
		return err
	}

	metrics.IncTransition(status)
	return nil
}

// List returns the collection in raw stored order. Consumers needing the
// createdAt-descending display order must re-sort.
func (s *LocalStore) List(ctx context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Subscribe delivers the collection once immediately, then on every poll
// tick. Each subscriber owns its own timer; cancel stops it.
func (s *LocalStore) Subscribe(ctx context.Context, fn func([]models.Booking)) (func(), error) {
	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(stop) })
	}

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		s.deliver(ctx, fn)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				s.deliver(ctx, fn)
			}
		}
	}()

	return cancel, nil
}

func (s *LocalStore) deliver(ctx context.Context, fn func([]models.Booking)) {
	bookings, err := s.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read collection for delivery")
		return
	}
	fn(bookings)
	metrics.IncSyncDelivery("local")
}

func (s *LocalStore) readAll() ([]models.Booking, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(models.LocalBookingsKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bookings blob: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		return nil, fmt.Errorf("unmarshal bookings blob: %w", err)
	}
	return bookings, nil
}

func (s *LocalStore) writeAll(bookings []models.Booking) error {
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("marshal bookings blob: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(models.LocalBookingsKey), data)
	})
	if err != nil {
		return fmt.Errorf("write bookings blob: %w", err)
	}
	return nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}
