package database

import (
	"context"
	"testing"

	"seatkeeper/internal/shared/config"
)

func TestInitDBWithRedisDisabled(t *testing.T) {
	cfg := config.Load()
	cfg.Redis.Enabled = false

	db, err := InitDB(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.GetRedisClient() != nil {
		t.Fatal("expected no Redis client")
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
