package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"seatkeeper/internal/notifications"
	"seatkeeper/internal/shared/config"
	"seatkeeper/pkg/logger"

	"github.com/joho/godotenv"
)

// bookingfeed follows the seat-booked topic and logs every confirmed booking.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	workers := flag.Int("workers", 1, "consumer loops")
	fromStart := flag.Bool("from-start", false, "replay the topic from the oldest offset")
	flag.Parse()

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	consumerCfg := notifications.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Kafka.Brokers
	consumerCfg.Topics = []string{cfg.Kafka.BookedTopic}
	consumerCfg.GroupID = cfg.Kafka.GroupID
	consumerCfg.OffsetOldest = *fromStart

	consumer, err := notifications.NewSeatBookedConsumer(consumerCfg, func(ctx context.Context, e *notifications.SeatBookedEvent) error {
		appLogger.WithStructure(e.StructureID).InfoContext(ctx, "Seat booking confirmed",
			slog.String("event_id", e.ID.String()),
			slog.Int("seat_number", e.SeatNumber),
			slog.String("seat_name", e.SeatName),
			slog.String("email", e.Email),
			slog.String("date", e.Date),
			slog.String("start_time", e.StartTime),
			slog.String("end_time", e.EndTime),
			slog.Bool("preferred", e.Preferred),
		)
		return nil
	})
	if err != nil {
		appLogger.Error("Failed to start consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	consumer.Start(ctx, *workers)
	<-ctx.Done()

	appLogger.Info("Stopping booking feed...")
	if err := consumer.Stop(); err != nil {
		appLogger.Error("Error stopping consumer", slog.Any("error", err))
	}
}
