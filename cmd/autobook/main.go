package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/notifications"
	"seatkeeper/internal/reservation"
	"seatkeeper/internal/seats"
	"seatkeeper/internal/shared/config"
	"seatkeeper/internal/shared/database"
	"seatkeeper/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	structure := flag.String("structure", cfg.Seats.StructureID, "library structure id")
	date := flag.String("date", time.Now().Format("2006-01-02"), "day to book, YYYY-MM-DD")
	start := flag.String("start", "", "start time, HH:MM on a half hour")
	duration := flag.Int("duration", 0, "minutes to book, a multiple of 30")
	resourceType := flag.Int("type", cfg.Seats.ResourceType, "resource type to search")
	email := flag.String("email", cfg.Seats.Email, "booking email")
	prefer := flag.String("prefer", "", "comma-separated seat numbers in priority order")
	dryRun := flag.Bool("dry-run", false, "pick a seat without booking it")
	flag.Parse()

	if *structure == "" || *start == "" || *duration == 0 {
		flag.Usage()
		os.Exit(2)
	}

	preferred := cfg.Seats.FavoriteSeats
	if *prefer != "" {
		var err error
		if preferred, err = config.ParseIntList(*prefer); err != nil {
			log.Fatalf("Invalid -prefer list: %v", err)
		}
	}

	appLogger := logger.NewWithWriter(os.Stderr, cfg.LogLevel)
	logger.SetDefault(appLogger)

	opts, err := seats.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	deps := seats.Dependencies{Logger: appLogger}

	// Overlapping cron runs share the Redis booking guard when Redis is reachable
	if !*dryRun {
		if db, err := database.InitDB(cfg); err != nil {
			appLogger.Warn("Redis unavailable, booking without guard", slog.Any("error", err))
		} else if rdb := db.GetRedisClient(); rdb != nil {
			defer db.Close()
			deps.Guard = seats.NewRedisBookingGuard(rdb)
		}
	}

	if cfg.Kafka.Enabled && !*dryRun {
		producerCfg := notifications.DefaultKafkaProducerConfig()
		producerCfg.Brokers = cfg.Kafka.Brokers
		producerCfg.Topic = cfg.Kafka.BookedTopic
		publisher, err := notifications.NewKafkaPublisher(producerCfg)
		if err != nil {
			appLogger.Warn("Kafka unavailable, no booking event", slog.Any("error", err))
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}

	client := reservation.New(reservation.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		UserAgent:         cfg.Upstream.UserAgent,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
		Logger:            appLogger,
	})
	svc := seats.NewService(seats.NewRepository(client, nil), opts, deps)

	res, err := svc.AutoBook(context.Background(), *structure, seats.AutoBookRequest{
		Date:            *date,
		StartTime:       *start,
		DurationMinutes: *duration,
		ResourceType:    *resourceType,
		Email:           *email,
		PreferredSeats:  preferred,
		DryRun:          *dryRun,
	})
	switch {
	case errors.Is(err, availability.ErrNoFullyAvailable):
		fmt.Fprintln(os.Stderr, "No seat is free for the whole window")
		os.Exit(3)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Auto-booking failed: %v\n", err)
		os.Exit(1)
	}

	if err := seats.WriteAutoBook(os.Stdout, res); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}
