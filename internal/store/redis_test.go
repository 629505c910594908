package store

import (
	"context"
	"testing"
	"time"

	"glowup/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	return NewRedisStore(client, &logger)
}

func TestRedisStoreCreateAndList(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	first := &models.Booking{
		ServiceID:     "s1",
		ArtistID:      "a1",
		CustomerName:  "A",
		CustomerPhone: "0900000000",
		Date:          "2025-01-10",
		Time:          "10:00",
		Status:        models.StatusPending,
		CreatedAt:     1000,
		Notes:         "window seat",
	}
	require.NoError(t, store.Create(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &models.Booking{
		ServiceID:     "s2",
		ArtistID:      "a1",
		CustomerName:  "B",
		CustomerPhone: "0911111111",
		Date:          "2025-01-11",
		Time:          "11:00",
		Status:        models.StatusPending,
		CreatedAt:     2000,
	}
	require.NoError(t, store.Create(ctx, second))

	bookings, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	// newest first
	assert.Equal(t, second.ID, bookings[0].ID)
	assert.Equal(t, first.ID, bookings[1].ID)

	// full round trip of submitted fields
	got := bookings[1]
	assert.Equal(t, first.ServiceID, got.ServiceID)
	assert.Equal(t, first.ArtistID, got.ArtistID)
	assert.Equal(t, first.CustomerName, got.CustomerName)
	assert.Equal(t, first.CustomerPhone, got.CustomerPhone)
	assert.Equal(t, first.Date, got.Date)
	assert.Equal(t, first.Time, got.Time)
	assert.Equal(t, first.Status, got.Status)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.Equal(t, first.Notes, got.Notes)
}

func TestRedisStoreUpdateStatus(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	b := &models.Booking{
		CustomerName:  "A",
		CustomerPhone: "0900000000",
		Status:        models.StatusPending,
		CreatedAt:     1000,
	}
	require.NoError(t, store.Create(ctx, b))

	t.Run("legal transition", func(t *testing.T) {
		require.NoError(t, store.UpdateStatus(ctx, b.ID, models.StatusConfirmed))

		bookings, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, models.StatusConfirmed, bookings[0].Status)
		// only status changed
		assert.Equal(t, b.CustomerName, bookings[0].CustomerName)
		assert.Equal(t, b.CreatedAt, bookings[0].CreatedAt)
	})

	t.Run("illegal transition", func(t *testing.T) {
		err := store.UpdateStatus(ctx, b.ID, models.StatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := store.UpdateStatus(ctx, "nonexistent-id", models.StatusConfirmed)
		assert.ErrorIs(t, err, ErrNotFound)

		bookings, listErr := store.List(ctx)
		require.NoError(t, listErr)
		assert.Len(t, bookings, 1)
	})
}

func TestRedisStoreSubscribe(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	deliveries := make(chan []models.Booking, 16)
	cancel, err := store.Subscribe(ctx, func(bookings []models.Booking) {
		deliveries <- bookings
	})
	require.NoError(t, err)
	defer cancel()

	// initial delivery of the empty collection
	initial := waitDelivery(t, deliveries)
	assert.Empty(t, initial)

	b := &models.Booking{CustomerName: "A", CustomerPhone: "0900000000", Status: models.StatusPending, CreatedAt: 1000}
	require.NoError(t, store.Create(ctx, b))

	next := waitDelivery(t, deliveries)
	require.Len(t, next, 1)
	assert.Equal(t, b.ID, next[0].ID)

	cancel()
	time.Sleep(100 * time.Millisecond) // let any in-flight delivery land
	drain(deliveries)

	require.NoError(t, store.Create(ctx, &models.Booking{CustomerName: "B", CustomerPhone: "1", Status: models.StatusPending, CreatedAt: 2000}))
	select {
	case <-deliveries:
		t.Fatal("delivery received after unsubscribe")
	case <-time.After(300 * time.Millisecond):
	}
}

func waitDelivery(t *testing.T, ch chan []models.Booking) []models.Booking {
	t.Helper()
	select {
	case bookings := <-ch:
		return bookings
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func drain(ch chan []models.Booking) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
