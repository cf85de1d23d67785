package driver

import (
	"context"

	"swift-dispatch/internal/common"
	domainerrors "swift-dispatch/internal/errors"
	"swift-dispatch/internal/redis"
)

// Store is the slice of the driver store this service needs; declared locally
// to avoid importing the store package (which imports this one).
type Store interface {
	GetAll(ctx context.Context) ([]*Driver, error)
	GetByID(ctx context.Context, id string) (*Driver, error)
	GetAvailable(ctx context.Context) ([]*Driver, error)
	Create(ctx context.Context, d *Driver) error
	Update(ctx context.Context, d *Driver) error
	UpdateLocation(ctx context.Context, id string, loc common.Location) (*Driver, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Service interface {
	Register(ctx context.Context, name string, vehicle VehicleType, loc common.Location) (*Driver, error)
	GetByID(ctx context.Context, id string) (*Driver, error)
	List(ctx context.Context, status *Status) ([]*Driver, error)
	ListAvailable(ctx context.Context) ([]*Driver, error)
	UpdateProfile(ctx context.Context, id string, req UpdateRequest) (*Driver, error)
	SetStatus(ctx context.Context, id string, status Status) (*Driver, error)
	Heartbeat(ctx context.Context, id string, lat, lng float64) (*Driver, error)
	GetLocation(ctx context.Context, id string) (*common.Location, error)
	Remove(ctx context.Context, id string) error
}

type service struct {
	store Store
	cache *redis.DriverLocationCache
}

func NewService(store Store, cache *redis.DriverLocationCache) Service {
	return &service{store: store, cache: cache}
}

// -------------------------------------------------------------------------------------------------
func (s *service) Register(ctx context.Context, name string, vehicle VehicleType, loc common.Location) (*Driver, error) {
	if !ValidVehicleType(vehicle) {
		return nil, domainerrors.NewValidation("unknown vehicle type: " + string(vehicle))
	}
	if err := common.ValidateLatLng(loc.Lat, loc.Lng); err != nil {
		return nil, domainerrors.NewValidation(err.Error())
	}

	d := New(name, vehicle, loc)
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetByID(ctx context.Context, id string) (*Driver, error) {
	return s.store.GetByID(ctx, id)
}

// -------------------------------------------------------------------------------------------------
func (s *service) List(ctx context.Context, status *Status) ([]*Driver, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return all, nil
	}

	filtered := make([]*Driver, 0, len(all))
	for _, d := range all {
		if d.Status == *status {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListAvailable(ctx context.Context) ([]*Driver, error) {
	return s.store.GetAvailable(ctx)
}

// -------------------------------------------------------------------------------------------------
func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateRequest) (*Driver, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.VehicleType != nil {
		if !ValidVehicleType(*req.VehicleType) {
			return nil, domainerrors.NewValidation("unknown vehicle type: " + string(*req.VehicleType))
		}
		d.VehicleType = *req.VehicleType
	}
	if req.Rating != nil {
		d.SetRating(*req.Rating)
	}

	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
// SetStatus handles the manual available/offline toggle. Busy is owned by the
// dispatch engine and cannot be set by hand.
func (s *service) SetStatus(ctx context.Context, id string, status Status) (*Driver, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case StatusAvailable:
		err = d.GoAvailable()
	case StatusOffline:
		err = d.GoOffline()
	case StatusBusy:
		return nil, domainerrors.NewValidation("busy status is managed by the dispatch engine")
	default:
		return nil, domainerrors.NewValidation("unknown driver status: " + string(status))
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Heartbeat(ctx context.Context, id string, lat, lng float64) (*Driver, error) {
	if err := common.ValidateLatLng(lat, lng); err != nil {
		return nil, domainerrors.NewValidation(err.Error())
	}

	loc := common.NewLocation(lat, lng)
	d, err := s.store.UpdateLocation(ctx, id, loc)
	if err != nil {
		return nil, err
	}

	// Cache writes are best effort; the store stays authoritative.
	if s.cache != nil {
		_ = s.cache.Set(ctx, id, loc)
	}

	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetLocation(ctx context.Context, id string) (*common.Location, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil && cached != nil {
			loc := common.NewLocation(cached.Lat, cached.Lng)
			return &loc, nil
		}
	}

	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loc := d.Location

	if s.cache != nil {
		_ = s.cache.Set(ctx, id, loc)
	}

	return &loc, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Remove(ctx context.Context, id string) error {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if len(d.ActiveDeliveries) > 0 {
		return domainerrors.DriverHasActiveDeliveries(id)
	}

	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.DriverNotFound(id)
	}
	return nil
}
