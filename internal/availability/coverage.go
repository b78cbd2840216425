package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSeatPattern matches seat names such as "Posto a sedere 46".
const DefaultSeatPattern = `Posto a sedere ([0-9]+)`

// SeatPattern extracts a seat number from a resource name.
type SeatPattern struct {
	re *regexp.Regexp
}

// CompileSeatPattern compiles expr, anchored at the start of the name.
// The first capture group must hold the seat number.
func CompileSeatPattern(expr string) (*SeatPattern, error) {
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid seat pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("invalid seat pattern %q: needs a capture group", expr)
	}
	return &SeatPattern{re: re}, nil
}

// Number returns the seat number encoded in name.
func (p *SeatPattern) Number(name string) (int, bool) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BookableSet returns the slot start times at which r can be booked.
func BookableSet(r Resource) SlotSet {
	s := make(SlotSet, len(r.Hours))
	for _, slot := range r.Hours {
		if !slot.PlacesBookable {
			continue
		}
		c, err := ParseClock(slot.Hour)
		if err != nil {
			continue
		}
		s.Add(c)
	}
	return s
}

// Place is the bookable time of one seat, accumulated over several lookups.
type Place struct {
	Number     int     `json:"seat_number"`
	ResourceID int     `json:"resource_id"`
	Name       string  `json:"resource_name"`
	Bookable   SlotSet `json:"-"`
}

// Covers reports whether the place can be booked for every slot of window.
func (p *Place) Covers(window SlotSet) bool {
	return p.Bookable.SupersetOf(window)
}

// Accumulator merges lookup results keyed by resource id.
type Accumulator struct {
	pattern *SeatPattern
	places  map[int]*Place
	order   []int
}

func NewAccumulator(pattern *SeatPattern) *Accumulator {
	return &Accumulator{
		pattern: pattern,
		places:  make(map[int]*Place),
	}
}

// Add merges one lookup's resources. Resources without hours or whose name
// does not carry a seat number are skipped; the count of skipped ones is returned.
func (a *Accumulator) Add(resources []Resource) int {
	skipped := 0
	for _, r := range resources {
		if len(r.Hours) == 0 {
			skipped++
			continue
		}
		number, ok := a.pattern.Number(r.Name)
		if !ok {
			skipped++
			continue
		}

		place, found := a.places[r.ID]
		if !found {
			place = &Place{
				Number:     number,
				ResourceID: r.ID,
				Name:       r.Name,
				Bookable:   make(SlotSet),
			}
			a.places[r.ID] = place
			a.order = append(a.order, r.ID)
		}
		place.Bookable.Union(BookableSet(r))
	}
	return skipped
}

// Places returns every accumulated place in discovery order.
func (a *Accumulator) Places() []*Place {
	out := make([]*Place, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.places[id])
	}
	return out
}

// Covering returns, in discovery order, the places bookable for the whole window.
func (a *Accumulator) Covering(window SlotSet) []*Place {
	var out []*Place
	for _, id := range a.order {
		if p := a.places[id]; p.Covers(window) {
			out = append(out, p)
		}
	}
	return out
}
