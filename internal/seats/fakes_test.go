package seats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/notifications"
	"seatkeeper/internal/reservation"
	"seatkeeper/pkg/cache"
)

type reserveCall struct {
	resourceID int
	req        reservation.ReserveRequest
}

// fakeUpstream serves canned lookups keyed by resource type (free seat
// listings) or start hour (window lookups).
type fakeUpstream struct {
	categories  []availability.RoomCategory
	byType      map[int][]availability.Resource
	byStartHour map[string][]availability.Resource
	lookupErr   error
	reserveErr  error

	siteInfoCalls int
	queries       []reservation.AvailableQuery
	reserves      []reserveCall
}

func (f *fakeUpstream) SiteInfo(ctx context.Context, structureID string) (*reservation.SiteInfo, error) {
	f.siteInfoCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return &reservation.SiteInfo{Types: f.categories}, nil
}

func (f *fakeUpstream) Available(ctx context.Context, structureID string, q reservation.AvailableQuery) ([]availability.Resource, error) {
	f.queries = append(f.queries, q)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if q.StartHour != "" {
		return f.byStartHour[q.StartHour], nil
	}
	return f.byType[q.ResourceType], nil
}

func (f *fakeUpstream) Reserve(ctx context.Context, resourceID int, req reservation.ReserveRequest) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserves = append(f.reserves, reserveCall{resourceID: resourceID, req: req})
	return nil
}

// fakeGuard behaves like the Redis guard: a key stays held until released.
type fakeGuard struct {
	mu       sync.Mutex
	busy     bool
	held     map[string]bool
	acquired []string
	released []string
}

func (g *fakeGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy || g.held[key] {
		return "", ErrBookingInProgress
	}
	if g.held == nil {
		g.held = make(map[string]bool)
	}
	g.held[key] = true
	g.acquired = append(g.acquired, key)
	return "token-" + key, nil
}

func (g *fakeGuard) Release(ctx context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != "token-"+key {
		return fmt.Errorf("wrong token %q", token)
	}
	delete(g.held, key)
	g.released = append(g.released, key)
	return nil
}

type fakePublisher struct {
	events []*notifications.SeatBookedEvent
	err    error
}

func (p *fakePublisher) PublishSeatBooked(ctx context.Context, event *notifications.SeatBookedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// slots builds n consecutive slots from start with the given state.
func slots(start string, n int, state string, bookable bool) []availability.TimeSlot {
	c := availability.MustClock(start)
	out := make([]availability.TimeSlot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, availability.TimeSlot{
			Hour:            c.Add(i * availability.Granularity).String(),
			State:           state,
			PlacesAvailable: 1,
			PlacesBookable:  availability.Flag(bookable),
		})
	}
	return out
}

func seatResource(id int, name string, hours ...[]availability.TimeSlot) availability.Resource {
	r := availability.Resource{ID: id, Name: name}
	for _, h := range hours {
		r.Hours = append(r.Hours, h...)
	}
	return r
}

// listingUpstream has two reading rooms and an excluded group room.
func listingUpstream() *fakeUpstream {
	return &fakeUpstream{
		categories: []availability.RoomCategory{
			{ResourceType: 972, Description: "Sala lettura"},
			{ResourceType: 1, Description: "Sale gruppi"},
			{ResourceType: 973, Description: "Sala studio"},
		},
		byType: map[int][]availability.Resource{
			972: {
				seatResource(1, "Posto a sedere 1",
					slots("08:00", 2, availability.StateAvailable, true),
					slots("09:00", 1, "full", false)),
				seatResource(2, "Posto a sedere 2",
					slots("08:00", 3, availability.StateAvailable, true)),
				seatResource(3, "Posto a sedere 3"),
			},
			1: {
				seatResource(10, "Sala gruppi A", slots("08:00", 4, availability.StateAvailable, true)),
			},
			973: {
				seatResource(20, "Posto a sedere 20", slots("08:00", 4, "full", false)),
			},
		},
	}
}

// coverageUpstream answers the two lookups of an 08:30 + 270 minute window.
// Seats 47 and 58 cover it, seat 46 misses the last slot.
func coverageUpstream() *fakeUpstream {
	return &fakeUpstream{
		byStartHour: map[string][]availability.Resource{
			"08:30": {
				seatResource(1046, "Posto a sedere 46", slots("08:30", 8, availability.StateAvailable, true)),
				seatResource(1047, "Posto a sedere 47", slots("08:30", 8, availability.StateAvailable, true)),
				seatResource(1058, "Posto a sedere 58", slots("08:30", 8, availability.StateAvailable, true)),
				seatResource(1100, "Sala gruppi B", slots("08:30", 8, availability.StateAvailable, true)),
			},
			"12:30": {
				seatResource(1046, "Posto a sedere 46", slots("12:30", 1, "full", false)),
				seatResource(1058, "Posto a sedere 58", slots("12:30", 1, availability.StateAvailable, true)),
				seatResource(1047, "Posto a sedere 47", slots("12:30", 1, availability.StateAvailable, true)),
			},
		},
	}
}

func testOptions() Options {
	pattern, _ := availability.CompileSeatPattern(availability.DefaultSeatPattern)
	return Options{
		ExcludedTypes:    []int{1, 2860, 4415},
		SeatPattern:      pattern,
		ResourceType:     972,
		MaxLookupMinutes: availability.MaxLookupMinutes,
		BookingGuardTTL:  time.Minute,
	}
}

// fakeCache keeps JSON-encoded entries in memory and records deletions.
type fakeCache struct {
	entries map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
