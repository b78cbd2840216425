package availability

import (
	"fmt"
	"sort"
)

// MaxLookupMinutes is the longest window the upstream accepts in a single call.
const MaxLookupMinutes = 240

// SlotSet is a set of slot start times.
type SlotSet map[Clock]struct{}

func NewSlotSet(clocks ...Clock) SlotSet {
	s := make(SlotSet, len(clocks))
	for _, c := range clocks {
		s[c] = struct{}{}
	}
	return s
}

func (s SlotSet) Add(c Clock) {
	s[c] = struct{}{}
}

func (s SlotSet) Contains(c Clock) bool {
	_, ok := s[c]
	return ok
}

// Union adds every member of other to s.
func (s SlotSet) Union(other SlotSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// SupersetOf reports whether every member of other is in s.
func (s SlotSet) SupersetOf(other SlotSet) bool {
	if len(other) > len(s) {
		return false
	}
	for c := range other {
		if _, ok := s[c]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s SlotSet) Sorted() []Clock {
	out := make([]Clock, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SubWindow is a bounded part of a requested window.
type SubWindow struct {
	Start   Clock
	Minutes int
}

func (w SubWindow) End() Clock {
	return w.Start.Add(w.Minutes)
}

// ValidateWindow checks that a window starts on a slot boundary, lasts a
// positive multiple of the granularity and ends by midnight.
func ValidateWindow(start Clock, duration int) error {
	switch {
	case start < 0 || !start.Aligned():
		return fmt.Errorf("%w: start %s is not aligned to %d minutes", ErrInvalidWindow, start, Granularity)
	case duration <= 0 || duration%Granularity != 0:
		return fmt.Errorf("%w: duration %d is not a positive multiple of %d", ErrInvalidWindow, duration, Granularity)
	case int(start)+duration > minutesPerDay:
		return fmt.Errorf("%w: window %s+%dm ends after midnight", ErrInvalidWindow, start, duration)
	}
	return nil
}

// RequiredWindow lists the slot start times a booking from start for
// duration minutes must hold.
func RequiredWindow(start Clock, duration int) SlotSet {
	s := make(SlotSet, duration/Granularity+1)
	for offset := 0; offset < duration; offset += Granularity {
		s.Add(start.Add(offset))
	}
	return s
}

// SplitWindow cuts a window into consecutive parts of at most max minutes.
func SplitWindow(start Clock, duration, max int) []SubWindow {
	if max <= 0 {
		max = duration
	}
	var parts []SubWindow
	for offset := 0; offset < duration; {
		n := min(max, duration-offset)
		parts = append(parts, SubWindow{Start: start.Add(offset), Minutes: n})
		offset += n
	}
	return parts
}
