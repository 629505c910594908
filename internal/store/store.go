package store

import (
	"context"
	"errors"
	"fmt"

	"glowup/internal/config"
	"glowup/internal/domain"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned for operations on an unknown booking id.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when a status change is not a
	// legal successor of the booking's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// New selects and opens a backend once at startup. With backend=auto the
// redis backend wins when an address is configured and reachable; the
// local store is the fallback. The choice never changes at runtime.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.BookingStore, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return newRedisFromConfig(ctx, cfg.Redis, logger)
	case config.BackendLocal:
		return NewLocalStore(cfg.Local, logger)
	case config.BackendAuto:
		if cfg.Redis.Address != "" {
			remote, err := newRedisFromConfig(ctx, cfg.Redis, logger)
			if err == nil {
				return remote, nil
			}
			logger.Warn().Err(err).Msg("redis unavailable, falling back to local store")
		}
		return NewLocalStore(cfg.Local, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
