package availability

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Granularity is the slot length in minutes. Every computation assumes it.
const Granularity = 30

const minutesPerDay = 24 * 60

// StateAvailable is the only slot state that counts as free.
const StateAvailable = "available"

var (
	ErrInvalidClock  = errors.New("invalid time, expected HH:MM")
	ErrInvalidWindow = errors.New("invalid time window")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for constants and tests.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add returns the clock shifted by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Aligned reports whether the clock falls on a slot boundary.
func (c Clock) Aligned() bool {
	return int(c)%Granularity == 0
}

// Flag decodes the upstream places_bookable field, which arrives either as 0/1 or as a JSON bool.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1":
		*f = true
		return nil
	case "false", "0", "null":
		*f = false
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid flag value %s", data)
	}
	*f = n != 0
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// TimeSlot is one half-hour entry of a resource's day.
type TimeSlot struct {
	Hour            string `json:"hour"`
	State           string `json:"state"`
	PlacesAvailable int    `json:"places_available"`
	PlacesBookable  Flag   `json:"places_bookable"`
}

func (s TimeSlot) IsAvailable() bool {
	return s.State == StateAvailable
}

// Resource is a bookable seat as returned by the upstream availability lookup.
type Resource struct {
	ID          int        `json:"resource_id"`
	Name        string     `json:"resource_name"`
	Description string     `json:"description"`
	Hours       []TimeSlot `json:"hours"`
}

// Validate rejects resources the calculator cannot reason about. Callers skip them.
func (r Resource) Validate() error {
	if len(r.Hours) == 0 {
		return fmt.Errorf("resource %d: no hours", r.ID)
	}
	seen := make(map[Clock]struct{}, len(r.Hours))
	for _, slot := range r.Hours {
		c, err := ParseClock(slot.Hour)
		if err != nil {
			return fmt.Errorf("resource %d: %w", r.ID, err)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("resource %d: duplicate slot %s", r.ID, slot.Hour)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// RoomCategory is a resource type listed in the site infos.
type RoomCategory struct {
	ResourceType int    `json:"resource_type"`
	Description  string `json:"localized_description"`
}
