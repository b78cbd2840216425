package seats

import (
	"fmt"
	"io"
	"strings"
)

// DurationLabel renders a stay length as "1.5h", or "30min" below one hour.
func DurationLabel(minutes int) string {
	if minutes >= 60 {
		return fmt.Sprintf("%.1fh", float64(minutes)/60)
	}
	return fmt.Sprintf("%dmin", minutes)
}

// WriteFreeSeats prints a free seat listing as plain text.
func WriteFreeSeats(w io.Writer, r *FreeSeatsResponse) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Available seats for %s at %s:\n\n", r.Date, r.Time)

	if len(r.Categories) == 0 {
		b.WriteString("No available seats found.\n")
	}
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "%s: %d seats available\n", c.Category, len(c.Seats))
		for _, s := range c.Seats {
			fmt.Fprintf(&b, "  - %s (available until %s, %s)\n", s.ResourceName, s.EndTime, DurationLabel(s.DurationMinutes))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAutoBook prints the outcome of an auto-booking.
func WriteAutoBook(w io.Writer, r *AutoBookResponse) error {
	var b strings.Builder

	verb := "Reserved"
	if r.DryRun {
		verb = "Would reserve"
	}
	kind := "preferred seat"
	if !r.Preferred {
		kind = "fallback seat"
	}
	fmt.Fprintf(&b, "%s %s %d (%s) on %s, %d seats fully available\n",
		verb, kind, r.Seat.SeatNumber, r.Seat.ResourceName, r.Date, r.Covering)
	for _, res := range r.Reservations {
		fmt.Fprintf(&b, "  - %s-%s\n", res.StartTime, res.EndTime)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
