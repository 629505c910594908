package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"glowup/internal/catalog"
	"glowup/internal/domain"
	"glowup/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrValidation wraps a field-level problem with a submitted booking.
	ErrValidation = errors.New("validation failed")

	// ErrUpdateInFlight is returned when a transition for the same
	// booking is already being applied.
	ErrUpdateInFlight = errors.New("update already in flight for booking")
)

// Service owns booking construction and the administrator-issued
// lifecycle transitions on top of the store.
type Service struct {
	store         domain.BookingStore
	catalog       *catalog.Catalog
	notifier      domain.Notifier
	logger        *zerolog.Logger
	updateTimeout time.Duration

	inflight sync.Map // booking id -> struct{}
}

func NewService(store domain.BookingStore, cat *catalog.Catalog, notifier domain.Notifier, logger *zerolog.Logger, updateTimeout time.Duration) *Service {
	if updateTimeout <= 0 {
		updateTimeout = models.DefaultUpdateTimeout * time.Second
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{
		store:         store,
		catalog:       cat,
		notifier:      notifier,
		logger:        logger,
		updateTimeout: updateTimeout,
	}
}

// NoopNotifier drops all events.
type NoopNotifier struct{}

func (NoopNotifier) BookingCreated(*models.Booking) {}
func (NoopNotifier) StatusChanged(string, string)   {}

// Validate checks a submitted booking against the form-flow rules:
// a known service and artist, a date not before today, a time of day,
// and non-empty contact fields. Notes stay optional.
func (s *Service) Validate(b *models.Booking) error {
	if strings.TrimSpace(b.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(b.CustomerPhone) == "" {
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	}
	if b.ServiceID == "" || !s.catalog.HasService(b.ServiceID) {
		return fmt.Errorf("%w: unknown service: %q", ErrValidation, b.ServiceID)
	}
	if b.ArtistID == "" || !s.catalog.HasArtist(b.ArtistID) {
		return fmt.Errorf("%w: unknown artist: %q", ErrValidation, b.ArtistID)
	}

	if _, err := time.Parse("2006-01-02", b.Date); err != nil {
		return fmt.Errorf("%w: invalid date format; expected YYYY-MM-DD", ErrValidation)
	}
	// Lexicographic compare is safe for YYYY-MM-DD.
	if b.Date < time.Now().Format("2006-01-02") {
		return fmt.Errorf("%w: date is in the past", ErrValidation)
	}

	if _, err := time.Parse("15:04", b.Time); err != nil {
		return fmt.Errorf("%w: invalid time format; expected HH:MM", ErrValidation)
	}

	return nil
}

// Create validates the booking, forces the initial lifecycle state and
// persists it. The store assigns the id when the booking has none.
func (s *Service) Create(ctx context.Context, b *models.Booking) error {
	if err := s.Validate(b); err != nil {
		return err
	}

	b.Status = models.StatusPending
	b.CreatedAt = time.Now().UnixMilli()

	if err := s.store.Create(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info().Str("id", b.ID).Str("service_id", b.ServiceID).Msg("booking created")
	s.notifier.BookingCreated(b)
	return nil
}

// Transition applies a status change to one booking. A second concurrent
// transition for the same id is rejected, and a hung backend call is cut
// off by the update timeout so the guard never stays engaged forever.
func (s *Service) Transition(ctx context.Context, id, status string) error {
	if !models.IsValidStatus(status) {
		return fmt.Errorf("%w: unknown status: %q", ErrValidation, status)
	}

	if _, loaded := s.inflight.LoadOrStore(id, struct{}{}); loaded {
		return fmt.Errorf("%w: %s", ErrUpdateInFlight, id)
	}
	defer s.inflight.Delete(id)

	updateCtx, cancel := context.WithTimeout(ctx, s.updateTimeout)
	defer cancel()

	if err := s.store.UpdateStatus(updateCtx, id, status); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Str("status", status).Msg("booking status updated")
	s.notifier.StatusChanged(id, status)
	return nil
}

// List returns the current collection.
func (s *Service) List(ctx context.Context) ([]models.Booking, error) {
	return s.store.List(ctx)
}
