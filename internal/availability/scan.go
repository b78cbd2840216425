package availability

// FreeInterval is a maximal run of consecutive available slots.
type FreeInterval struct {
	StartIndex      int   `json:"start_index"`
	Slots           int   `json:"consecutive_slots"`
	DurationMinutes int   `json:"duration_minutes"`
	Start           Clock `json:"-"`
	// LastSlot is the start of the last available slot in the run.
	LastSlot Clock `json:"-"`
	// End is the exclusive boundary: LastSlot plus one granularity unit.
	End             Clock `json:"-"`
	PlacesAvailable int   `json:"places_available"`
}

// DurationHours is the run length in hours.
func (f FreeInterval) DurationHours() float64 {
	return float64(f.DurationMinutes) / 60
}

// IndexOf returns the index of the slot whose hour equals target, or -1.
func IndexOf(slots []TimeSlot, target Clock) int {
	for i, slot := range slots {
		c, err := ParseClock(slot.Hour)
		if err != nil {
			continue
		}
		if c == target {
			return i
		}
	}
	return -1
}

// RunLength counts consecutive available slots starting at index from.
func RunLength(slots []TimeSlot, from int) int {
	if from < 0 {
		return 0
	}
	n := 0
	for i := from; i < len(slots); i++ {
		if !slots[i].IsAvailable() {
			break
		}
		n++
	}
	return n
}

// ScanFrom finds the run of available slots starting exactly at target.
// The second return value is false when target is not a slot of the sequence
// or when the slot at target is not available.
func ScanFrom(slots []TimeSlot, target Clock) (FreeInterval, bool) {
	idx := IndexOf(slots, target)
	if idx < 0 {
		return FreeInterval{}, false
	}

	run := RunLength(slots, idx)
	if run == 0 {
		return FreeInterval{}, false
	}

	last := idx + run - 1
	lastSlot, err := ParseClock(slots[last].Hour)
	if err != nil {
		return FreeInterval{}, false
	}

	return FreeInterval{
		StartIndex:      idx,
		Slots:           run,
		DurationMinutes: run * Granularity,
		Start:           target,
		LastSlot:        lastSlot,
		End:             lastSlot.Add(Granularity),
		PlacesAvailable: slots[idx].PlacesAvailable,
	}, true
}
