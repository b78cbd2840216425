package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/reservation"
	"seatkeeper/internal/shared/config"
	"seatkeeper/internal/shared/database"

	"github.com/gin-gonic/gin"
)

type stubUpstream struct{}

func (stubUpstream) SiteInfo(ctx context.Context, structureID string) (*reservation.SiteInfo, error) {
	return &reservation.SiteInfo{}, nil
}

func (stubUpstream) Available(ctx context.Context, structureID string, q reservation.AvailableQuery) ([]availability.Resource, error) {
	return nil, nil
}

func (stubUpstream) Reserve(ctx context.Context, resourceID int, req reservation.ReserveRequest) error {
	return nil
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Load()
	cfg.APIToken = "secret"
	engine := gin.New()
	if err := NewRouter(cfg, &database.DB{}, stubUpstream{}, nil).SetupRoutes(engine); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return engine
}

func TestHealthRoutes(t *testing.T) {
	engine := newEngine(t)

	for _, path := range []string{"/health", "/ping"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}

func TestSeatRoutesRegistered(t *testing.T) {
	engine := newEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/structures/lib/seats/free?date=2024-11-20&time=08:00", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("free seats: status = %d body = %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/structures/lib/seats/autobook", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("autobook without token: status = %d, want 401", w.Code)
	}
}

func TestSetupRoutesRejectsBadSeatPattern(t *testing.T) {
	cfg := config.Load()
	cfg.Seats.SeatPattern = "Posto a sedere [0-9]+"

	err := NewRouter(cfg, &database.DB{}, stubUpstream{}, nil).SetupRoutes(gin.New())
	if err == nil {
		t.Fatal("expected error for a pattern without capture group")
	}
}
