package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"glowup/internal/config"
	"glowup/internal/metrics"
	"glowup/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps each booking as a JSON document under booking:<id> and
// maintains a createdAt-scored index so reads come back pre-sorted
// descending. Every write publishes on the events channel, which drives
// push delivery to subscribers.
type RedisStore struct {
	client *redis.Client
	logger *zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewRedisClient creates a redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func newRedisFromConfig(ctx context.Context, cfg config.RedisConfig, logger *zerolog.Logger) (*RedisStore, error) {
	client := NewRedisClient(cfg)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Info().Str("addr", cfg.Address).Msg("redis store connected")
	return NewRedisStore(client, logger), nil
}

func NewRedisStore(client *redis.Client, logger *zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Backend() string { return "redis" }

func (s *RedisStore) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}

	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, models.RedisBookingPrefix+booking.ID, data, 0)
	pipe.ZAdd(ctx, models.RedisBookingIndex, redis.Z{
		Score:  float64(booking.CreatedAt),
		Member: booking.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist booking: %w", err)
	}

	s.publish(ctx, "created", booking.ID)
	metrics.IncBookingCreated()
	return nil
}

func (s *RedisStore) UpdateStatus(ctx context.Context, id, status string) error {
	key := models.RedisBookingPrefix + id

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}

	var booking models.Booking
	if err := json.Unmarshal([]byte(val), &booking); err != nil {
		return fmt.Errorf("unmarshal booking: %w", err)
	}

	if !models.CanTransition(booking.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
	}

	booking.Status = status
	data, err := json.Marshal(&booking)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	s.publish(ctx, "updated", id)
	metrics.IncTransition(status)
	return nil
}

// List returns the collection sorted by createdAt descending, straight
// from the index.
func (s *RedisStore) List(ctx context.Context) ([]models.Booking, error) {
	ids, err := s.client.ZRevRange(ctx, models.RedisBookingIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read booking index: %w", err)
	}
	if len(ids) == 0 {
		return []models.Booking{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = models.RedisBookingPrefix + id
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}

	bookings := make([]models.Booking, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document; skip rather than fail
			// the whole read.
			s.logger.Warn().Str("id", ids[i]).Msg("dangling booking index entry")
			continue
		}
		var b models.Booking
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			s.logger.Warn().Err(err).Str("id", ids[i]).Msg("skipping corrupt booking document")
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// Subscribe delivers the collection once immediately and again on every
// published change. Cancel closes the pubsub connection and stops the
// delivery goroutine.
func (s *RedisStore) Subscribe(ctx context.Context, fn func([]models.Booking)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, models.RedisEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to events: %w", err)
	}

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			_ = pubsub.Close()
		})
	}

	go func() {
		s.deliver(ctx, fn)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-stop:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				s.deliver(ctx, fn)
			}
		}
	}()

	return cancel, nil
}

func (s *RedisStore) deliver(ctx context.Context, fn func([]models.Booking)) {
	bookings, err := s.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load collection for delivery")
		return
	}
	fn(bookings)
	metrics.IncSyncDelivery("redis")
}

func (s *RedisStore) publish(ctx context.Context, event, id string) {
	if err := s.client.Publish(ctx, models.RedisEventsChannel, event+":"+id).Err(); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("failed to publish booking event")
	}
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
