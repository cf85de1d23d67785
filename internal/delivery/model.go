package delivery

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"swift-dispatch/internal/common"
	domainerrors "swift-dispatch/internal/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusPickup    Status = "pickup"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// nextStatus is the forward-only happy path once a driver is bound. Pending
// exits only through Assign; anything not in the table is unreachable through
// Advance. SetStatus is the administrative escape hatch.
var nextStatus = map[Status]Status{
	StatusAssigned:  StatusPickup,
	StatusPickup:    StatusInTransit,
	StatusInTransit: StatusDelivered,
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the successor status on the happy path, or false when the
// status has no forward transition.
func (s Status) Next() (Status, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusPickup, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Address struct {
	Street      string          `json:"street"`
	City        string          `json:"city"`
	PostalCode  string          `json:"postal_code"`
	Coordinates common.Location `json:"coordinates"`
}

type PackageDetails struct {
	Type         string  `json:"type"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	Dimensions   string  `json:"dimensions"`
	Instructions string  `json:"instructions"`
}

// Proof is the optional proof-of-delivery payload. It is stored verbatim;
// completeness is not validated.
type Proof struct {
	Signature  string `json:"signature"`
	ProofPhoto string `json:"proof_photo"`
}

type Delivery struct {
	ID              string         `json:"id"`
	TrackingID      string         `json:"tracking_id"`
	Status          Status         `json:"status"`
	PickupAddress   Address        `json:"pickup_address"`
	DeliveryAddress Address        `json:"delivery_address"`
	Package         PackageDetails `json:"package"`
	DriverID        *string        `json:"driver_id,omitempty"`
	Signature       string         `json:"signature,omitempty"`
	ProofPhoto      string         `json:"proof_photo,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	EstimatedTime   time.Time      `json:"estimated_time"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func New(pickup, dropoff Address, pkg PackageDetails) *Delivery {
	now := time.Now()
	return &Delivery{
		ID:              uuid.NewString(),
		TrackingID:      newTrackingID(),
		Status:          StatusPending,
		PickupAddress:   pickup,
		DeliveryAddress: dropoff,
		Package:         pkg,
		CreatedAt:       now,
		EstimatedTime:   now.Add(time.Hour),
		UpdatedAt:       now,
	}
}

func newTrackingID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SW" + strings.ToUpper(raw[:6])
}

// Assign binds a driver and moves the delivery to assigned. Only a pending
// delivery may be assigned; a second call fails rather than silently
// overwriting the driver.
func (d *Delivery) Assign(driverID string) error {
	if d.Status != StatusPending {
		if d.DriverID != nil {
			return domainerrors.DeliveryAlreadyAssigned(d.ID)
		}
		return domainerrors.DeliveryInvalidTransition(string(d.Status), string(StatusAssigned))
	}
	d.Status = StatusAssigned
	d.DriverID = &driverID
	d.UpdatedAt = time.Now()
	return nil
}

// Advance moves the delivery one step along the happy path. Assign is the
// only way out of pending: advancing an unassigned delivery would produce an
// assigned delivery no driver owns. Proof may be attached only on the
// transition into delivered.
func (d *Delivery) Advance(proof *Proof) error {
	if d.Status == StatusPending {
		return domainerrors.DeliveryInvalidTransition(string(StatusPending), string(StatusAssigned))
	}
	next, ok := d.Status.Next()
	if !ok {
		return domainerrors.DeliveryInvalidTransition(string(d.Status), "next")
	}
	if proof != nil && next != StatusDelivered {
		return domainerrors.NewValidation("proof of delivery is only accepted when completing a delivery")
	}
	d.Status = next
	if next == StatusDelivered && proof != nil {
		d.Signature = proof.Signature
		d.ProofPhoto = proof.ProofPhoto
	}
	d.UpdatedAt = time.Now()
	return nil
}

// Cancel is allowed from any non-terminal state.
func (d *Delivery) Cancel() error {
	if d.Status.IsTerminal() {
		return domainerrors.DeliveryInvalidTransition(string(d.Status), string(StatusCancelled))
	}
	d.Status = StatusCancelled
	d.DriverID = nil
	d.UpdatedAt = time.Now()
	return nil
}

// SetStatus bypasses the transition table for corrective updates. Callers own
// the consequences; the dispatch engine never uses it.
func (d *Delivery) SetStatus(s Status) {
	d.Status = s
	d.UpdatedAt = time.Now()
}
