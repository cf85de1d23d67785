package store

import (
	"context"

	"swift-dispatch/internal/common"
	"swift-dispatch/internal/delivery"
	"swift-dispatch/internal/driver"
)

// DeliveryStore is the keyed store behind the dispatch engine. Listings are
// ordered newest first; implementations must be safe for concurrent use.
type DeliveryStore interface {
	GetAll(ctx context.Context) ([]*delivery.Delivery, error)
	GetByID(ctx context.Context, id string) (*delivery.Delivery, error)
	GetByStatus(ctx context.Context, status delivery.Status) ([]*delivery.Delivery, error)
	Create(ctx context.Context, d *delivery.Delivery) error
	Update(ctx context.Context, d *delivery.Delivery) error
	Delete(ctx context.Context, id string) (bool, error)
}

type DriverStore interface {
	GetAll(ctx context.Context) ([]*driver.Driver, error)
	GetByID(ctx context.Context, id string) (*driver.Driver, error)
	GetAvailable(ctx context.Context) ([]*driver.Driver, error)
	Create(ctx context.Context, d *driver.Driver) error
	Update(ctx context.Context, d *driver.Driver) error
	UpdateLocation(ctx context.Context, id string, loc common.Location) (*driver.Driver, error)
	Delete(ctx context.Context, id string) (bool, error)
}
