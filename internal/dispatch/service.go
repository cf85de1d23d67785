package dispatch

import (
	"context"
	"sync"

	"swift-dispatch/internal/delivery"
	domainerrors "swift-dispatch/internal/errors"
	"swift-dispatch/internal/store"
)

type Service interface {
	RankCandidates(ctx context.Context, deliveryID string) ([]Candidate, error)
	Assign(ctx context.Context, deliveryID, driverID string) (*delivery.Delivery, error)
	AssignNearest(ctx context.Context, deliveryID string) (*delivery.Delivery, error)
	AssignAll(ctx context.Context) (*BatchResult, error)
	AdvanceStatus(ctx context.Context, deliveryID string, proof *delivery.Proof) (*delivery.Delivery, error)
	Cancel(ctx context.Context, deliveryID string) (*delivery.Delivery, error)
	ForceStatus(ctx context.Context, deliveryID string, status delivery.Status) (*delivery.Delivery, error)
}

type BatchFailure struct {
	DeliveryID string `json:"delivery_id"`
	Reason     string `json:"reason"`
}

// BatchResult reports one assign-all pass. Remaining counts deliveries still
// pending after the pass, whether beyond the driver pool or failed mid-batch.
// NoAvailableDrivers distinguishes "empty pool, nothing attempted" from a
// pass whose pairs all failed.
type BatchResult struct {
	AssignedCount      int            `json:"assigned_count"`
	Remaining          int            `json:"remaining"`
	NoAvailableDrivers bool           `json:"no_available_drivers,omitempty"`
	Failures           []BatchFailure `json:"failures,omitempty"`
}

type service struct {
	// mu is the single ordering lock for every state-mutating dispatch
	// operation: a delivery status flip and its driver-side bookkeeping
	// form one atomic unit, and at most one assignment attempt runs per
	// delivery at a time.
	mu sync.Mutex

	deliveries store.DeliveryStore
	drivers    store.DriverStore
	single     Policy
	batch      Policy
}

func NewService(deliveries store.DeliveryStore, drivers store.DriverStore) Service {
	return &service{
		deliveries: deliveries,
		drivers:    drivers,
		single:     NearestFirst{},
		batch:      RoundRobin{},
	}
}

// -------------------------------------------------------------------------------------------------
func (s *service) RankCandidates(ctx context.Context, deliveryID string) ([]Candidate, error) {
	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	pool, err := s.drivers.GetAvailable(ctx)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load driver pool", err)
	}

	return Rank(d, pool), nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Assign(ctx context.Context, deliveryID, driverID string) (*delivery.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.assignLocked(ctx, deliveryID, driverID)
}

// -------------------------------------------------------------------------------------------------
func (s *service) AssignNearest(ctx context.Context, deliveryID string) (*delivery.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	pool, err := s.drivers.GetAvailable(ctx)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load driver pool", err)
	}

	drv, ok := s.single.Pick(d, pool, 0)
	if !ok {
		return nil, domainerrors.NoCandidateForDelivery(deliveryID)
	}

	return s.assignLocked(ctx, deliveryID, drv.ID)
}

// -------------------------------------------------------------------------------------------------
func (s *service) AssignAll(ctx context.Context) (*BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.deliveries.GetByStatus(ctx, delivery.StatusPending)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load pending queue", err)
	}
	pool, err := s.drivers.GetAvailable(ctx)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load driver pool", err)
	}

	result := &BatchResult{Remaining: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}
	if len(pool) == 0 {
		result.NoAvailableDrivers = true
		return result, nil
	}

	// Snapshot semantics: the pool taken at pass start drives the whole
	// pass, bounded to min(pending, available). One assignment failure
	// never aborts the remaining pairs.
	n := min(len(pending), len(pool))
	for i := 0; i < n; i++ {
		d := pending[i]
		drv, ok := s.batch.Pick(d, pool, i)
		if !ok {
			break
		}

		if _, err := s.assignLocked(ctx, d.ID, drv.ID); err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				DeliveryID: d.ID,
				Reason:     err.Error(),
			})
			continue
		}
		result.AssignedCount++
	}

	result.Remaining = len(pending) - result.AssignedCount
	return result, nil
}

// assignLocked performs one driver↔delivery binding. Callers hold s.mu.
func (s *service) assignLocked(ctx context.Context, deliveryID, driverID string) (*delivery.Delivery, error) {
	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	drv, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !drv.IsAvailable() {
		return nil, domainerrors.DriverNotAvailable(driverID)
	}

	if err := d.Assign(driverID); err != nil {
		return nil, err
	}
	if err := drv.StartDelivery(deliveryID); err != nil {
		return nil, err
	}

	if err := s.deliveries.Update(ctx, d); err != nil {
		return nil, domainerrors.NewInternal("failed to persist delivery assignment", err)
	}
	if err := s.drivers.Update(ctx, drv); err != nil {
		return nil, domainerrors.NewInternal("failed to persist driver assignment", err)
	}

	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) AdvanceStatus(ctx context.Context, deliveryID string, proof *delivery.Proof) (*delivery.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if err := d.Advance(proof); err != nil {
		return nil, err
	}
	if err := s.deliveries.Update(ctx, d); err != nil {
		return nil, domainerrors.NewInternal("failed to persist status change", err)
	}

	// Completing a delivery credits the driver and frees it when nothing
	// else is in flight.
	if d.Status == delivery.StatusDelivered && d.DriverID != nil {
		if err := s.creditDriver(ctx, *d.DriverID, d.ID); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (s *service) creditDriver(ctx context.Context, driverID, deliveryID string) error {
	drv, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	drv.CompleteDelivery(deliveryID)
	if err := s.drivers.Update(ctx, drv); err != nil {
		return domainerrors.NewInternal("failed to persist driver completion", err)
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Cancel(ctx context.Context, deliveryID string) (*delivery.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	var driverID string
	if d.DriverID != nil {
		driverID = *d.DriverID
	}

	if err := d.Cancel(); err != nil {
		return nil, err
	}
	if err := s.deliveries.Update(ctx, d); err != nil {
		return nil, domainerrors.NewInternal("failed to persist cancellation", err)
	}

	if driverID != "" {
		drv, err := s.drivers.GetByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		drv.ReleaseDelivery(deliveryID)
		if err := s.drivers.Update(ctx, drv); err != nil {
			return nil, domainerrors.NewInternal("failed to persist driver release", err)
		}
	}

	return d, nil
}

// -------------------------------------------------------------------------------------------------
// ForceStatus is the corrective escape hatch: it skips the transition table
// and performs no driver-side bookkeeping.
func (s *service) ForceStatus(ctx context.Context, deliveryID string, status delivery.Status) (*delivery.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !delivery.ValidStatus(status) {
		return nil, domainerrors.NewValidation("unknown delivery status: " + string(status))
	}

	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	d.SetStatus(status)
	if err := s.deliveries.Update(ctx, d); err != nil {
		return nil, domainerrors.NewInternal("failed to persist status override", err)
	}
	return d, nil
}
