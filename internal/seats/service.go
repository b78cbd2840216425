package seats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/notifications"
	"seatkeeper/internal/reservation"
	"seatkeeper/internal/shared/constants"
	"seatkeeper/pkg/cache"
	"seatkeeper/pkg/logger"
)

var ErrInvalidRequest = errors.New("invalid request")

type Service interface {
	// Free seats at a point in time, grouped by room category
	FindFreeSeats(ctx context.Context, structureID string, q FreeSeatsQuery) (*FreeSeatsResponse, error)

	// Seats bookable for a whole window
	FindCoveringSeats(ctx context.Context, structureID string, req CoveringRequest) (*CoveringResponse, error)

	// Pick a covering seat and reserve it for the window
	AutoBook(ctx context.Context, structureID string, req AutoBookRequest) (*AutoBookResponse, error)
}

// Dependencies are the optional collaborators of the service. Nil fields
// disable caching, guarding and event publishing respectively.
type Dependencies struct {
	Cache     cache.Service
	Guard     BookingGuard
	Publisher notifications.Publisher
	Logger    *logger.Logger
}

type service struct {
	repo         Repository
	opts         Options
	cacheService cache.Service
	guard        BookingGuard
	publisher    notifications.Publisher
	log          *logger.Logger
}

func NewService(repo Repository, opts Options, deps Dependencies) Service {
	s := &service{
		repo:         repo,
		opts:         opts.withDefaults(),
		cacheService: deps.Cache,
		guard:        deps.Guard,
		publisher:    deps.Publisher,
		log:          deps.Logger,
	}
	if s.guard == nil {
		s.guard = NoopBookingGuard{}
	}
	if s.publisher == nil {
		s.publisher = notifications.NoopPublisher{}
	}
	if s.log == nil {
		s.log = logger.GetDefault()
	}
	return s
}

// FREE SEATS

func (s *service) FindFreeSeats(ctx context.Context, structureID string, q FreeSeatsQuery) (*FreeSeatsResponse, error) {
	if err := validateRequest(q); err != nil {
		return nil, err
	}
	at, err := availability.ParseClock(q.Time)
	if err != nil {
		return nil, err
	}

	if s.cacheService == nil {
		return s.listFreeSeats(ctx, structureID, q.Date, at)
	}

	var result FreeSeatsResponse
	key := constants.BuildFreeSeatsKey(structureID, q.Date, at.String())
	err = s.cacheService.GetOrSet(ctx, key, constants.TTL_FREE_SEATS, func() (interface{}, error) {
		return s.listFreeSeats(ctx, structureID, q.Date, at)
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) listFreeSeats(ctx context.Context, structureID, date string, at availability.Clock) (*FreeSeatsResponse, error) {
	categories, err := s.repo.GetRoomCategories(ctx, structureID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room categories: %w", err)
	}

	result := &FreeSeatsResponse{
		StructureID: structureID,
		Date:        date,
		Time:        at.String(),
		Categories:  []CategoryFreeSeats{},
	}

	for _, category := range categories {
		if s.opts.isExcluded(category.ResourceType) {
			continue
		}

		resources, err := s.repo.GetResources(ctx, structureID, reservation.AvailableQuery{
			Date:         date,
			ResourceType: category.ResourceType,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get resources of type %d: %w", category.ResourceType, err)
		}

		seats := s.freeSeatsAt(ctx, resources, at)
		if len(seats) == 0 {
			continue
		}
		result.Categories = append(result.Categories, CategoryFreeSeats{
			ResourceType: category.ResourceType,
			Category:     category.Description,
			Seats:        seats,
		})
	}

	return result, nil
}

func (s *service) freeSeatsAt(ctx context.Context, resources []availability.Resource, at availability.Clock) []FreeSeat {
	var seats []FreeSeat
	for _, r := range resources {
		if err := r.Validate(); err != nil {
			s.log.DebugContext(ctx, "Skipping malformed resource", slog.String("error", err.Error()))
			continue
		}
		run, ok := availability.ScanFrom(r.Hours, at)
		if !ok {
			continue
		}
		seats = append(seats, FreeSeat{
			ResourceID:       r.ID,
			ResourceName:     r.Name,
			Description:      r.Description,
			PlacesAvailable:  run.PlacesAvailable,
			ConsecutiveSlots: run.Slots,
			DurationMinutes:  run.DurationMinutes,
			DurationHours:    run.DurationHours(),
			LastSlot:         run.LastSlot.String(),
			EndTime:          run.End.String(),
		})
	}

	// Longest stay first
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].DurationMinutes != seats[j].DurationMinutes {
			return seats[i].DurationMinutes > seats[j].DurationMinutes
		}
		return seats[i].ResourceName < seats[j].ResourceName
	})
	return seats
}

// FULL COVERAGE

type coverage struct {
	start       availability.Clock
	windows     []availability.SubWindow
	accumulator *availability.Accumulator
	covering    []*availability.Place
	skipped     int
}

func (s *service) FindCoveringSeats(ctx context.Context, structureID string, req CoveringRequest) (*CoveringResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	cov, err := s.searchCoverage(ctx, structureID, req)
	if err != nil {
		return nil, err
	}

	seats := make([]CoveringSeat, 0, len(cov.covering))
	for _, p := range cov.covering {
		seats = append(seats, toCoveringSeat(p))
	}

	return &CoveringResponse{
		StructureID:     structureID,
		Date:            req.Date,
		StartTime:       cov.start.String(),
		EndTime:         cov.start.Add(req.DurationMinutes).String(),
		DurationMinutes: req.DurationMinutes,
		SubWindows:      toSubWindowResponses(cov.windows),
		Seats:           seats,
		Skipped:         cov.skipped,
	}, nil
}

// searchCoverage runs one lookup per bounded sub-window and keeps the places
// whose merged bookable slots hold the whole window.
func (s *service) searchCoverage(ctx context.Context, structureID string, req CoveringRequest) (*coverage, error) {
	start, err := availability.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	if err := availability.ValidateWindow(start, req.DurationMinutes); err != nil {
		return nil, err
	}

	resourceType := req.ResourceType
	if resourceType == 0 {
		resourceType = s.opts.ResourceType
	}

	cov := &coverage{
		start:       start,
		windows:     availability.SplitWindow(start, req.DurationMinutes, s.opts.MaxLookupMinutes),
		accumulator: availability.NewAccumulator(s.opts.SeatPattern),
	}

	for _, w := range cov.windows {
		resources, err := s.repo.GetResources(ctx, structureID, reservation.AvailableQuery{
			Date:         req.Date,
			ResourceType: resourceType,
			Capacity:     1,
			Duration:     w.Minutes,
			StartHour:    w.Start.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s+%dm: %w", w.Start, w.Minutes, err)
		}
		cov.skipped += cov.accumulator.Add(resources)
	}

	cov.covering = cov.accumulator.Covering(availability.RequiredWindow(start, req.DurationMinutes))
	return cov, nil
}

// AUTO-BOOKING

func (s *service) AutoBook(ctx context.Context, structureID string, req AutoBookRequest) (result *AutoBookResponse, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	email := req.Email
	if email == "" {
		email = s.opts.Email
	}
	if email == "" && !req.DryRun {
		return nil, fmt.Errorf("%w: email is required to book", ErrInvalidRequest)
	}
	preferred := req.PreferredSeats
	if len(preferred) == 0 {
		preferred = s.opts.FavoriteSeats
	}

	if !req.DryRun {
		key := constants.BuildBookingGuardKey(structureID, req.Date, req.StartTime, req.DurationMinutes, email)
		var token string
		token, err = s.guard.Acquire(ctx, key, s.opts.BookingGuardTTL)
		if err != nil {
			return nil, err
		}
		// Reads the named result, so every later failure releases the guard
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.guard.Release(context.WithoutCancel(ctx), key, token); relErr != nil {
				s.log.WithError(relErr).WarnContext(ctx, "Failed to release booking guard", slog.String("key", key))
			}
		}()
	}

	cov, err := s.searchCoverage(ctx, structureID, req.covering())
	if err != nil {
		return nil, err
	}

	selection, err := availability.Select(cov.covering, preferred)
	if err != nil {
		return nil, err
	}
	if !selection.Preferred {
		s.log.LogSelectionFallback(ctx, preferred, selection.Place.Number)
	}

	result = &AutoBookResponse{
		Seat:         toCoveringSeat(selection.Place),
		Preferred:    selection.Preferred,
		DryRun:       req.DryRun,
		Email:        email,
		Date:         req.Date,
		Reservations: toSubWindowResponses(cov.windows),
		Covering:     len(cov.covering),
	}
	if req.DryRun {
		return result, nil
	}

	for i, w := range cov.windows {
		start, end := w.Start.String(), w.End().String()
		reserveErr := s.repo.Reserve(ctx, selection.Place.ResourceID, reservation.ReserveRequest{
			Email:     email,
			Date:      req.Date,
			StartTime: start,
			EndTime:   end,
		})
		if reserveErr != nil {
			return nil, fmt.Errorf("seat %d %s-%s (%d of %d reserved before failure): %w",
				selection.Place.Number, start, end, i, len(cov.windows), reserveErr)
		}
		s.log.LogSeatBooked(ctx, selection.Place.ResourceID, selection.Place.Number, req.Date, start, end)
	}

	s.invalidateFreeSeats(ctx, structureID, req.Date, cov.start, req.DurationMinutes)
	s.log.InfoWithContext(ctx, "Auto-booking completed", map[string]interface{}{
		"structure_id": structureID,
		"seat_number":  selection.Place.Number,
		"preferred":    selection.Preferred,
		"sub_windows":  len(cov.windows),
	})

	event := notifications.NewSeatBookedEvent(structureID, selection.Place.ResourceID, selection.Place.Number,
		selection.Place.Name, email, req.Date, cov.start.String(), cov.start.Add(req.DurationMinutes).String(), selection.Preferred)
	if pubErr := s.publisher.PublishSeatBooked(ctx, event); pubErr != nil {
		// The seat is already reserved at this point
		s.log.ErrorWithContext(ctx, "Failed to publish booking event", pubErr, map[string]interface{}{
			"resource_id": selection.Place.ResourceID,
		})
	}

	return result, nil
}

// invalidateFreeSeats drops cached listings for every slot the booking took.
func (s *service) invalidateFreeSeats(ctx context.Context, structureID, date string, start availability.Clock, duration int) {
	if s.cacheService == nil {
		return
	}
	for _, slot := range availability.RequiredWindow(start, duration).Sorted() {
		key := constants.BuildFreeSeatsKey(structureID, date, slot.String())
		if err := s.cacheService.Delete(ctx, key); err != nil {
			s.log.WithError(err).WarnContext(ctx, "Failed to invalidate free seat listing", slog.String("key", key))
		}
	}
}
