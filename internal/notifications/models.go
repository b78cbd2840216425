package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeSeatBooked EventType = "SEAT_BOOKED"
)

// SeatBookedEvent is published once every sub-window of an auto-booking succeeded.
type SeatBookedEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	StructureID string    `json:"structure_id"`
	ResourceID  int       `json:"resource_id"`
	SeatNumber  int       `json:"seat_number"`
	SeatName    string    `json:"seat_name"`
	Email       string    `json:"email"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Preferred   bool      `json:"preferred"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSeatBookedEvent stamps a new event with an id and creation time.
func NewSeatBookedEvent(structureID string, resourceID, seatNumber int, seatName, email, date, start, end string, preferred bool) *SeatBookedEvent {
	return &SeatBookedEvent{
		ID:          uuid.New(),
		Type:        EventTypeSeatBooked,
		StructureID: structureID,
		ResourceID:  resourceID,
		SeatNumber:  seatNumber,
		SeatName:    seatName,
		Email:       email,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Preferred:   preferred,
		CreatedAt:   time.Now().UTC(),
	}
}

func (e *SeatBookedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps all events of one library on the same partition.
func (e *SeatBookedEvent) PartitionKey() string {
	return e.StructureID
}
