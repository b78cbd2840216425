package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"seatkeeper/internal/reservation"
	"seatkeeper/internal/seats"
	"seatkeeper/internal/shared/config"
	"seatkeeper/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	structure := flag.String("structure", cfg.Seats.StructureID, "library structure id")
	date := flag.String("date", "", "day to look at, YYYY-MM-DD")
	at := flag.String("time", "", "start time, HH:MM")
	asJSON := flag.Bool("json", false, "print the listing as JSON")
	flag.Parse()

	if *structure == "" || *date == "" || *at == "" {
		flag.Usage()
		os.Exit(2)
	}

	appLogger := logger.NewWithWriter(os.Stderr, cfg.LogLevel)
	logger.SetDefault(appLogger)

	opts, err := seats.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client := reservation.New(reservation.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		UserAgent:         cfg.Upstream.UserAgent,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
		Logger:            appLogger,
	})
	svc := seats.NewService(seats.NewRepository(client, nil), opts, seats.Dependencies{Logger: appLogger})

	res, err := svc.FindFreeSeats(context.Background(), *structure, seats.FreeSeatsQuery{Date: *date, Time: *at})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching data: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(res)
	} else {
		err = seats.WriteFreeSeats(os.Stdout, res)
	}
	if err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}
