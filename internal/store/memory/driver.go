package memory

import (
	"context"
	"slices"
	"sync"

	"swift-dispatch/internal/common"
	"swift-dispatch/internal/driver"
	domainerrors "swift-dispatch/internal/errors"
)

// DriverStore mirrors DeliveryStore for the driver pool. Pool order is
// insertion order (oldest first), which fixes the round-robin driver index.
type DriverStore struct {
	mu    sync.RWMutex
	byID  map[string]*driver.Driver
	order []string // ids, oldest first
}

func NewDriverStore() *DriverStore {
	return &DriverStore{byID: make(map[string]*driver.Driver)}
}

func (s *DriverStore) GetAll(_ context.Context) ([]*driver.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*driver.Driver, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneDriver(s.byID[id]))
	}
	return out, nil
}

func (s *DriverStore) GetByID(_ context.Context, id string) (*driver.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.DriverNotFound(id)
	}
	return cloneDriver(d), nil
}

func (s *DriverStore) GetAvailable(_ context.Context) ([]*driver.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*driver.Driver
	for _, id := range s.order {
		if d := s.byID[id]; d.IsAvailable() {
			out = append(out, cloneDriver(d))
		}
	}
	return out, nil
}

func (s *DriverStore) Create(_ context.Context, d *driver.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; ok {
		return domainerrors.NewConflict("driver " + d.ID + " already exists")
	}
	s.byID[d.ID] = cloneDriver(d)
	s.order = append(s.order, d.ID)
	return nil
}

func (s *DriverStore) Update(_ context.Context, d *driver.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; !ok {
		return domainerrors.DriverNotFound(d.ID)
	}
	s.byID[d.ID] = cloneDriver(d)
	return nil
}

func (s *DriverStore) UpdateLocation(_ context.Context, id string, loc common.Location) (*driver.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.DriverNotFound(id)
	}
	d.UpdateLocation(loc)
	return cloneDriver(d), nil
}

func (s *DriverStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true, nil
}

func cloneDriver(d *driver.Driver) *driver.Driver {
	cp := *d
	cp.ActiveDeliveries = slices.Clone(d.ActiveDeliveries)
	return &cp
}
