package seats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seatkeeper/internal/reservation"
	"seatkeeper/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

func newTestRouter(up *fakeUpstream, token string) *gin.Engine {
	return newGuardedTestRouter(up, token, nil)
}

func newGuardedTestRouter(up *fakeUpstream, token string, guard BookingGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc := NewService(NewRepository(up, nil), testOptions(), Dependencies{Guard: guard})
	SetupSeatRoutes(router.Group("/api/v1"), NewController(svc), token)
	return router
}

func serve(router *gin.Engine, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, response.StandardApiResponse) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope response.StandardApiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &envelope)
	return w, envelope
}

func TestGetFreeSeatsEndpoint(t *testing.T) {
	router := newTestRouter(listingUpstream(), "")

	w, env := serve(router, http.MethodGet, "/api/v1/structures/lib/seats/free?date=2024-11-20&time=08:00", "", nil)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	data, _ := json.Marshal(env.Data)
	var res FreeSeatsResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.StructureID != "lib" || len(res.Categories) != 1 || len(res.Categories[0].Seats) != 2 {
		t.Fatalf("data = %+v", res)
	}
}

func TestGetFreeSeatsEndpointBadQuery(t *testing.T) {
	router := newTestRouter(listingUpstream(), "")

	w, env := serve(router, http.MethodGet, "/api/v1/structures/lib/seats/free?date=2024-11-20", "", nil)
	if w.Code != http.StatusBadRequest || env.Status != "error" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestGetFreeSeatsEndpointUpstreamDown(t *testing.T) {
	up := listingUpstream()
	up.lookupErr = reservation.ErrLookupFailed
	router := newTestRouter(up, "")

	w, _ := serve(router, http.MethodGet, "/api/v1/structures/lib/seats/free?date=2024-11-20&time=08:00", "", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestCoveringEndpoint(t *testing.T) {
	router := newTestRouter(coverageUpstream(), "")

	body := `{"date":"2024-11-20","start_time":"08:30","duration_minutes":270}`
	w, _ := serve(router, http.MethodPost, "/api/v1/structures/lib/seats/covering", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	body = `{"date":"2024-11-20","start_time":"08:15","duration_minutes":60}`
	w, _ = serve(router, http.MethodPost, "/api/v1/structures/lib/seats/covering", body, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("misaligned start: status = %d, want 400", w.Code)
	}
}

func TestAutoBookEndpointRequiresToken(t *testing.T) {
	router := newTestRouter(coverageUpstream(), "secret")
	body := `{"date":"2024-11-20","start_time":"08:30","duration_minutes":270,"email":"me@example.com","preferred_seats":[47]}`

	w, _ := serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	w, _ = serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body,
		map[string]string{"Authorization": "Bearer wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", w.Code)
	}

	w, env := serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body,
		map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK || env.Message != "Seat booked successfully" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestAutoBookEndpointNoSeat(t *testing.T) {
	up := coverageUpstream()
	delete(up.byStartHour, "12:30")
	router := newTestRouter(up, "")

	body := `{"date":"2024-11-20","start_time":"08:30","duration_minutes":270,"email":"me@example.com"}`
	w, _ := serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAutoBookEndpointRetryAfterFailure(t *testing.T) {
	up := coverageUpstream()
	delete(up.byStartHour, "12:30")
	guard := &fakeGuard{}
	router := newGuardedTestRouter(up, "", guard)

	body := `{"date":"2024-11-20","start_time":"08:30","duration_minutes":270,"email":"me@example.com"}`
	for i := 0; i < 2; i++ {
		w, _ := serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("attempt %d: status = %d, want 404", i+1, w.Code)
		}
	}
	if len(guard.acquired) != 2 || len(guard.released) != 2 {
		t.Fatalf("acquired=%v released=%v", guard.acquired, guard.released)
	}
}

func TestAutoBookEndpointDuplicateAfterSuccess(t *testing.T) {
	router := newGuardedTestRouter(coverageUpstream(), "", &fakeGuard{})

	body := `{"date":"2024-11-20","start_time":"08:30","duration_minutes":270,"email":"me@example.com","preferred_seats":[47]}`
	w, _ := serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first booking: status = %d body = %s", w.Code, w.Body.String())
	}
	w, _ = serve(router, http.MethodPost, "/api/v1/structures/lib/seats/autobook", body, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate booking: status = %d, want 409", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidRequest, http.StatusBadRequest},
		{ErrBookingInProgress, http.StatusConflict},
		{reservation.ErrReservationFailed, http.StatusBadGateway},
		{http.ErrHandlerTimeout, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
