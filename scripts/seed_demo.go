package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"glowup/internal/booking"
	"glowup/internal/catalog"
	"glowup/internal/config"
	"glowup/internal/models"
	"glowup/internal/store"

	"github.com/rs/zerolog"
)

// Seeds a handful of demo bookings through the configured store so a
// fresh install has something to show in the admin view.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config.yaml")
		count      = flag.Int("count", 3, "number of demo bookings to create")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bookingStore, err := store.New(ctx, cfg, &logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer bookingStore.Close()

	svc := booking.NewService(bookingStore, cat, nil, &logger, 0)

	services := cat.Services()
	artists := cat.Artists()
	if len(services) == 0 || len(artists) == 0 {
		return fmt.Errorf("catalog has no services or artists")
	}

	names := []string{"Lan Pham", "Thu Nguyen", "Mai Tran", "Huong Le", "An Vo"}
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	created := 0
	for i := 0; i < *count; i++ {
		b := &models.Booking{
			ServiceID:     services[i%len(services)].ID,
			ArtistID:      artists[0].ID,
			CustomerName:  names[i%len(names)],
			CustomerPhone: fmt.Sprintf("09%08d", 10000000+i),
			Date:          date,
			Time:          fmt.Sprintf("%02d:00", 9+i),
			Notes:         "demo booking",
		}
		if err := svc.Create(ctx, b); err != nil {
			return fmt.Errorf("create demo booking %d: %w", i, err)
		}
		created++
		logger.Info().Str("id", b.ID).Str("customer", b.CustomerName).Msg("demo booking created")
	}

	logger.Info().Int("created", created).Str("backend", bookingStore.Backend()).Msg("seeding done")
	return nil
}
