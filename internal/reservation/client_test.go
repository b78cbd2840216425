package reservation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
}

func TestSiteInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sites/abc/infos" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`{"types":[{"resource_type":972,"localized_description":"Sala lettura"},{"resource_type":1,"localized_description":"Sale gruppi"}]}`))
	})

	info, err := c.SiteInfo(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Types) != 2 || info.Types[0].ResourceType != 972 || info.Types[0].Description != "Sala lettura" {
		t.Fatalf("types = %+v", info.Types)
	}
}

func TestAvailableSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/api/resources/abc/available" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if q.Get("date") != "2024-11-20" || q.Get("type") != "972" || q.Get("capacity") != "1" ||
			q.Get("duration") != "240" || q.Get("start_hour") != "08:30" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"resource_id":11,"resource_name":"Posto a sedere 11","hours":[
			{"hour":"08:30","state":"available","places_available":1,"places_bookable":1},
			{"hour":"09:00","state":"full","places_available":0,"places_bookable":0}]}]`))
	})

	resources, err := c.Available(context.Background(), "abc", AvailableQuery{
		Date: "2024-11-20", ResourceType: 972, Capacity: 1, Duration: 240, StartHour: "08:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resources) != 1 || len(resources[0].Hours) != 2 {
		t.Fatalf("resources = %+v", resources)
	}
	if !resources[0].Hours[0].PlacesBookable || resources[0].Hours[1].PlacesBookable {
		t.Fatalf("bookable flags decoded wrong: %+v", resources[0].Hours)
	}
}

func TestAvailableOmitsZeroFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("capacity") || q.Has("duration") || q.Has("start_hour") {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	})
	if _, err := c.Available(context.Background(), "abc", AvailableQuery{Date: "2026-01-13", ResourceType: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLookupFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.SiteInfo(context.Background(), "abc")
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("error = %v, want ErrLookupFailed", err)
	}
}

func TestLookupBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err := c.Available(context.Background(), "abc", AvailableQuery{Date: "2026-01-13"})
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("error = %v, want ErrLookupFailed", err)
	}
}

func TestReservePostsForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reserve/1046" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("email") != "me@example.com" || r.PostForm.Get("date") != "2024-11-20" ||
			r.PostForm.Get("start_time") != "08:30" || r.PostForm.Get("end_time") != "12:30" ||
			r.PostForm.Get("person_count") != "1" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.Reserve(context.Background(), 1046, ReserveRequest{
		Email: "me@example.com", Date: "2024-11-20", StartTime: "08:30", EndTime: "12:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReserveRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"already booked"}`))
	})
	err := c.Reserve(context.Background(), 1, ReserveRequest{Email: "a@b.c", Date: "2024-11-20", StartTime: "08:30", EndTime: "09:00"})
	if !errors.Is(err, ErrReservationFailed) {
		t.Fatalf("error = %v, want ErrReservationFailed", err)
	}
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.SiteInfo(ctx, "abc"); !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("error = %v, want ErrLookupFailed", err)
	}
}
