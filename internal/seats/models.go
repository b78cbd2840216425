package seats

import (
	"fmt"
	"time"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/shared/config"
	"seatkeeper/internal/shared/constants"
)

// Options are the per-deployment seat search defaults.
type Options struct {
	// ExcludedTypes are room categories never listed (group rooms, staff seats, laptops)
	ExcludedTypes []int
	SeatPattern   *availability.SeatPattern
	// FavoriteSeats is the default priority list for auto-booking
	FavoriteSeats    []int
	ResourceType     int
	Email            string
	MaxLookupMinutes int
	BookingGuardTTL  time.Duration
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	pattern, err := availability.CompileSeatPattern(cfg.Seats.SeatPattern)
	if err != nil {
		return Options{}, fmt.Errorf("seat pattern: %w", err)
	}

	ttl := cfg.Redis.BookingGuardTTL
	if ttl <= 0 {
		ttl = constants.TTL_BOOKING_GUARD
	}

	return Options{
		ExcludedTypes:    cfg.Seats.ExcludedTypes,
		SeatPattern:      pattern,
		FavoriteSeats:    cfg.Seats.FavoriteSeats,
		ResourceType:     cfg.Seats.ResourceType,
		Email:            cfg.Seats.Email,
		MaxLookupMinutes: cfg.Seats.MaxLookupMinutes,
		BookingGuardTTL:  ttl,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.SeatPattern == nil {
		o.SeatPattern, _ = availability.CompileSeatPattern(availability.DefaultSeatPattern)
	}
	if o.MaxLookupMinutes <= 0 {
		o.MaxLookupMinutes = availability.MaxLookupMinutes
	}
	if o.BookingGuardTTL <= 0 {
		o.BookingGuardTTL = constants.TTL_BOOKING_GUARD
	}
	return o
}

func (o Options) isExcluded(resourceType int) bool {
	for _, t := range o.ExcludedTypes {
		if t == resourceType {
			return true
		}
	}
	return false
}
