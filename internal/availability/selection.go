package availability

import "errors"

var ErrNoFullyAvailable = errors.New("no fully available seat for the requested window")

// Selection is the place chosen for booking.
type Selection struct {
	Place *Place
	// Preferred is false when the place was picked by the fallback.
	Preferred bool
}

// Select picks the first preferred seat number present in covering. When none
// of the preferred seats covers the window it falls back to the first covering
// place in discovery order. That fallback is a policy choice, not a ranking.
func Select(covering []*Place, preferred []int) (Selection, error) {
	if len(covering) == 0 {
		return Selection{}, ErrNoFullyAvailable
	}

	byNumber := make(map[int]*Place, len(covering))
	for _, p := range covering {
		if _, dup := byNumber[p.Number]; !dup {
			byNumber[p.Number] = p
		}
	}
	for _, number := range preferred {
		if p, ok := byNumber[number]; ok {
			return Selection{Place: p, Preferred: true}, nil
		}
	}

	return Selection{Place: covering[0]}, nil
}
