package driver

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"swift-dispatch/internal/common"
	domainerrors "swift-dispatch/internal/errors"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

type VehicleType string

const (
	VehicleVan        VehicleType = "van"
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleBicycle    VehicleType = "bicycle"
)

func ValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleVan, VehicleCar, VehicleMotorcycle, VehicleBicycle:
		return true
	}
	return false
}

type Driver struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	VehicleType      VehicleType     `json:"vehicle_type"`
	Status           Status          `json:"status"`
	Location         common.Location `json:"location"`
	Rating           float64         `json:"rating"`
	TotalDeliveries  int             `json:"total_deliveries"`
	ActiveDeliveries []string        `json:"active_deliveries"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func New(name string, vehicle VehicleType, loc common.Location) *Driver {
	now := time.Now()
	return &Driver{
		ID:               uuid.NewString(),
		Name:             name,
		VehicleType:      vehicle,
		Status:           StatusAvailable,
		Location:         loc,
		Rating:           5.0,
		ActiveDeliveries: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (d *Driver) IsAvailable() bool {
	return d.Status == StatusAvailable
}

// StartDelivery records a new active delivery and flips the driver to busy.
// An offline driver cannot take work; an available driver with a stale active
// list is rejected to protect the availability invariant.
func (d *Driver) StartDelivery(deliveryID string) error {
	if d.Status == StatusOffline {
		return domainerrors.DriverNotAvailable(d.ID)
	}
	if slices.Contains(d.ActiveDeliveries, deliveryID) {
		return domainerrors.NewConflict("delivery " + deliveryID + " is already active for driver " + d.ID)
	}
	d.ActiveDeliveries = append(d.ActiveDeliveries, deliveryID)
	d.Status = StatusBusy
	d.UpdatedAt = time.Now()
	return nil
}

// CompleteDelivery removes the delivery from the active set, bumps the
// lifetime counter, and frees the driver when nothing else is in flight.
func (d *Driver) CompleteDelivery(deliveryID string) {
	d.removeActive(deliveryID)
	d.TotalDeliveries++
	d.UpdatedAt = time.Now()
}

// ReleaseDelivery drops an active delivery without crediting it, used when a
// delivery is cancelled mid-flight.
func (d *Driver) ReleaseDelivery(deliveryID string) {
	d.removeActive(deliveryID)
	d.UpdatedAt = time.Now()
}

func (d *Driver) removeActive(deliveryID string) {
	d.ActiveDeliveries = slices.DeleteFunc(d.ActiveDeliveries, func(id string) bool {
		return id == deliveryID
	})
	if len(d.ActiveDeliveries) == 0 && d.Status == StatusBusy {
		d.Status = StatusAvailable
	}
}

// UpdateLocation applies a telemetry ping. Location mutates independently of
// assignment state.
func (d *Driver) UpdateLocation(loc common.Location) {
	d.Location = loc
	d.UpdatedAt = time.Now()
}

// GoOffline takes the driver out of rotation. Refused while deliveries are in
// flight.
func (d *Driver) GoOffline() error {
	if len(d.ActiveDeliveries) > 0 {
		return domainerrors.DriverHasActiveDeliveries(d.ID)
	}
	d.Status = StatusOffline
	d.UpdatedAt = time.Now()
	return nil
}

// GoAvailable returns the driver to rotation. A driver holding active
// deliveries must stay busy.
func (d *Driver) GoAvailable() error {
	if len(d.ActiveDeliveries) > 0 {
		return domainerrors.DriverHasActiveDeliveries(d.ID)
	}
	d.Status = StatusAvailable
	d.UpdatedAt = time.Now()
	return nil
}

// SetRating clamps to the valid [0,5] range.
func (d *Driver) SetRating(r float64) {
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	d.Rating = r
	d.UpdatedAt = time.Now()
}
