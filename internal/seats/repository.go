package seats

import (
	"context"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/reservation"
	"seatkeeper/internal/shared/constants"
	"seatkeeper/pkg/cache"
)

// Upstream is the subset of the reservation client the seats module needs.
type Upstream interface {
	SiteInfo(ctx context.Context, structureID string) (*reservation.SiteInfo, error)
	Available(ctx context.Context, structureID string, q reservation.AvailableQuery) ([]availability.Resource, error)
	Reserve(ctx context.Context, resourceID int, req reservation.ReserveRequest) error
}

type Repository interface {
	GetRoomCategories(ctx context.Context, structureID string) ([]availability.RoomCategory, error)
	GetResources(ctx context.Context, structureID string, q reservation.AvailableQuery) ([]availability.Resource, error)
	Reserve(ctx context.Context, resourceID int, req reservation.ReserveRequest) error
}

type repository struct {
	upstream Upstream
	cache    cache.Service
}

// NewRepository wraps the upstream client. cacheService may be nil.
func NewRepository(upstream Upstream, cacheService cache.Service) Repository {
	return &repository{
		upstream: upstream,
		cache:    cacheService,
	}
}

func (r *repository) GetRoomCategories(ctx context.Context, structureID string) ([]availability.RoomCategory, error) {
	fetch := func() (interface{}, error) {
		info, err := r.upstream.SiteInfo(ctx, structureID)
		if err != nil {
			return nil, err
		}
		return info.Types, nil
	}

	if r.cache == nil {
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		return data.([]availability.RoomCategory), nil
	}

	var categories []availability.RoomCategory
	err := r.cache.GetOrSet(ctx, constants.BuildSiteInfoKey(structureID), constants.TTL_SITE_INFO, fetch, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Raw lookups are not cached here; the service caches the free-seat listing
// for TTL_FREE_SEATS and the covering search always asks the upstream.
func (r *repository) GetResources(ctx context.Context, structureID string, q reservation.AvailableQuery) ([]availability.Resource, error) {
	return r.upstream.Available(ctx, structureID, q)
}

func (r *repository) Reserve(ctx context.Context, resourceID int, req reservation.ReserveRequest) error {
	return r.upstream.Reserve(ctx, resourceID, req)
}
