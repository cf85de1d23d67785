package memory

import (
	"context"
	"slices"
	"sync"

	"swift-dispatch/internal/delivery"
	domainerrors "swift-dispatch/internal/errors"
)

// DeliveryStore keeps deliveries in process memory. State is volatile by
// design; the engine only requires a keyed CRUD store. Listings return
// newest-first, which also fixes the pending-queue order for batch dispatch.
type DeliveryStore struct {
	mu    sync.RWMutex
	byID  map[string]*delivery.Delivery
	order []string // ids, newest first
}

func NewDeliveryStore() *DeliveryStore {
	return &DeliveryStore{byID: make(map[string]*delivery.Delivery)}
}

func (s *DeliveryStore) GetAll(_ context.Context) ([]*delivery.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*delivery.Delivery, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.byID[id]))
	}
	return out, nil
}

func (s *DeliveryStore) GetByID(_ context.Context, id string) (*delivery.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.DeliveryNotFound(id)
	}
	return clone(d), nil
}

func (s *DeliveryStore) GetByStatus(_ context.Context, status delivery.Status) ([]*delivery.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*delivery.Delivery
	for _, id := range s.order {
		if d := s.byID[id]; d.Status == status {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (s *DeliveryStore) Create(_ context.Context, d *delivery.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; ok {
		return domainerrors.NewConflict("delivery " + d.ID + " already exists")
	}
	s.byID[d.ID] = clone(d)
	s.order = append([]string{d.ID}, s.order...)
	return nil
}

func (s *DeliveryStore) Update(_ context.Context, d *delivery.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; !ok {
		return domainerrors.DeliveryNotFound(d.ID)
	}
	s.byID[d.ID] = clone(d)
	return nil
}

func (s *DeliveryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true, nil
}

// clone keeps callers from mutating stored state behind the lock.
func clone(d *delivery.Delivery) *delivery.Delivery {
	cp := *d
	if d.DriverID != nil {
		id := *d.DriverID
		cp.DriverID = &id
	}
	return &cp
}
