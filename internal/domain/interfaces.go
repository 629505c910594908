package domain

import (
	"context"

	"glowup/internal/models"
)

// BookingStore is the persistence contract shared by both backends.
// The store exclusively owns the canonical collection; subscribers only
// ever see snapshots delivered through Subscribe.
type BookingStore interface {
	// Create persists a new booking. The caller must have forced
	// status=pending and set createdAt; the store assigns the id when
	// the booking arrives without one.
	Create(ctx context.Context, booking *models.Booking) error

	// UpdateStatus applies a status transition to one booking.
	// Returns ErrNotFound for an unknown id and ErrInvalidTransition
	// when the lifecycle graph forbids the move.
	UpdateStatus(ctx context.Context, id, status string) error

	// List returns the current collection.
	List(ctx context.Context) ([]models.Booking, error)

	// Subscribe registers fn to receive the full collection now and on
	// every subsequent change (or poll tick). The returned cancel func
	// stops delivery and releases the listener or timer.
	Subscribe(ctx context.Context, fn func([]models.Booking)) (cancel func(), err error)

	// Backend names the active backend (redis, local).
	Backend() string

	Close() error
}

// Advisor answers free-text styling questions. Implementations must
// degrade to an apology string instead of failing.
type Advisor interface {
	Advise(ctx context.Context, message string) string
}

// Notifier delivers booking events to administrators out of band.
type Notifier interface {
	BookingCreated(booking *models.Booking)
	StatusChanged(id, status string)
}

// Authenticator decides whether a presented credential grants the admin
// role. It is a capability, not a security boundary.
type Authenticator interface {
	Authenticate(token string) bool
}
