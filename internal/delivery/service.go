package delivery

import (
	"context"

	domainerrors "swift-dispatch/internal/errors"

	"swift-dispatch/internal/common"
)

// Store is the slice of the delivery store this service needs; declared
// locally to avoid importing the store package (which imports this one).
type Store interface {
	GetAll(ctx context.Context) ([]*Delivery, error)
	GetByID(ctx context.Context, id string) (*Delivery, error)
	GetByStatus(ctx context.Context, status Status) ([]*Delivery, error)
	Create(ctx context.Context, d *Delivery) error
	Update(ctx context.Context, d *Delivery) error
	Delete(ctx context.Context, id string) (bool, error)
}

type Service interface {
	Book(ctx context.Context, pickup, dropoff Address, pkg PackageDetails) (*Delivery, error)
	GetByID(ctx context.Context, id string) (*Delivery, error)
	List(ctx context.Context, status *Status) ([]*Delivery, error)
	UpdateDetails(ctx context.Context, id string, req UpdateRequest) (*Delivery, error)
	Remove(ctx context.Context, id string) error
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func validateAddress(a Address, label string) error {
	if err := common.ValidateLatLng(a.Coordinates.Lat, a.Coordinates.Lng); err != nil {
		return domainerrors.NewValidation(label + ": " + err.Error())
	}
	return nil
}

func validatePackage(p PackageDetails) error {
	if p.Weight < 0 {
		return domainerrors.NewValidation("package weight must be non-negative")
	}
	if p.Value < 0 {
		return domainerrors.NewValidation("package value must be non-negative")
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Book(ctx context.Context, pickup, dropoff Address, pkg PackageDetails) (*Delivery, error) {
	if err := validateAddress(pickup, "pickup address"); err != nil {
		return nil, err
	}
	if err := validateAddress(dropoff, "delivery address"); err != nil {
		return nil, err
	}
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}

	d := New(pickup, dropoff, pkg)
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetByID(ctx context.Context, id string) (*Delivery, error) {
	return s.store.GetByID(ctx, id)
}

// -------------------------------------------------------------------------------------------------
func (s *service) List(ctx context.Context, status *Status) ([]*Delivery, error) {
	if status != nil {
		return s.store.GetByStatus(ctx, *status)
	}
	return s.store.GetAll(ctx)
}

// -------------------------------------------------------------------------------------------------
func (s *service) UpdateDetails(ctx context.Context, id string, req UpdateRequest) (*Delivery, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status.IsTerminal() {
		return nil, domainerrors.DeliveryInvalidTransition(string(d.Status), "update")
	}

	if req.PickupAddress != nil {
		if err := validateAddress(*req.PickupAddress, "pickup address"); err != nil {
			return nil, err
		}
		d.PickupAddress = *req.PickupAddress
	}
	if req.DeliveryAddress != nil {
		if err := validateAddress(*req.DeliveryAddress, "delivery address"); err != nil {
			return nil, err
		}
		d.DeliveryAddress = *req.DeliveryAddress
	}
	if req.Package != nil {
		if err := validatePackage(*req.Package); err != nil {
			return nil, err
		}
		d.Package = *req.Package
	}

	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Remove(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.DeliveryNotFound(id)
	}
	return nil
}
