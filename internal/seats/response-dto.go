package seats

import "seatkeeper/internal/availability"

// FreeSeat is one seat free from the requested time onwards.
type FreeSeat struct {
	ResourceID       int     `json:"resource_id"`
	ResourceName     string  `json:"resource_name"`
	Description      string  `json:"description"`
	PlacesAvailable  int     `json:"places_available"`
	ConsecutiveSlots int     `json:"consecutive_slots"`
	DurationMinutes  int     `json:"duration_minutes"`
	DurationHours    float64 `json:"duration_hours"`
	LastSlot         string  `json:"last_slot"`
	EndTime          string  `json:"end_time"`
}

type CategoryFreeSeats struct {
	ResourceType int        `json:"resource_type"`
	Category     string     `json:"category"`
	Seats        []FreeSeat `json:"seats"`
}

type FreeSeatsResponse struct {
	StructureID string              `json:"structure_id"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Categories  []CategoryFreeSeats `json:"categories"`
}

// ByCategory indexes the listing by category name.
func (r *FreeSeatsResponse) ByCategory() map[string][]FreeSeat {
	out := make(map[string][]FreeSeat, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Category] = c.Seats
	}
	return out
}

type SubWindowResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Minutes   int    `json:"minutes"`
}

type CoveringSeat struct {
	SeatNumber   int    `json:"seat_number"`
	ResourceID   int    `json:"resource_id"`
	ResourceName string `json:"resource_name"`
}

type CoveringResponse struct {
	StructureID     string              `json:"structure_id"`
	Date            string              `json:"date"`
	StartTime       string              `json:"start_time"`
	EndTime         string              `json:"end_time"`
	DurationMinutes int                 `json:"duration_minutes"`
	SubWindows      []SubWindowResponse `json:"sub_windows"`
	Seats           []CoveringSeat      `json:"seats"`
	// Skipped counts resources ignored for a malformed name or slot list
	Skipped int `json:"skipped"`
}

type AutoBookResponse struct {
	Seat         CoveringSeat        `json:"seat"`
	Preferred    bool                `json:"preferred"`
	DryRun       bool                `json:"dry_run"`
	Email        string              `json:"email,omitempty"`
	Date         string              `json:"date"`
	Reservations []SubWindowResponse `json:"reservations"`
	Covering     int                 `json:"covering_seats"`
}

func toCoveringSeat(p *availability.Place) CoveringSeat {
	return CoveringSeat{
		SeatNumber:   p.Number,
		ResourceID:   p.ResourceID,
		ResourceName: p.Name,
	}
}

func toSubWindowResponses(windows []availability.SubWindow) []SubWindowResponse {
	out := make([]SubWindowResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, SubWindowResponse{
			StartTime: w.Start.String(),
			EndTime:   w.End().String(),
			Minutes:   w.Minutes,
		})
	}
	return out
}
