package dispatch

import (
	"swift-dispatch/internal/delivery"
	"swift-dispatch/internal/driver"
)

// Policy picks a driver from an eligible pool for the index-th delivery of a
// dispatch pass. Single assignment and batch assignment deliberately use
// different policies: nearest-match for one delivery, round-robin load
// spreading for a whole queue.
type Policy interface {
	Name() string
	Pick(d *delivery.Delivery, pool []*driver.Driver, index int) (*driver.Driver, bool)
}

// NearestFirst picks the closest available driver to the pickup point,
// ignoring the pass index.
type NearestFirst struct{}

func (NearestFirst) Name() string { return "nearest_first" }

func (NearestFirst) Pick(d *delivery.Delivery, pool []*driver.Driver, _ int) (*driver.Driver, bool) {
	best, ok := BestMatch(d, pool)
	if !ok {
		return nil, false
	}
	return best.Driver, true
}

// RoundRobin spreads load by position: the i-th delivery gets the driver at
// index i mod pool size. Distance is intentionally ignored.
type RoundRobin struct{}

func (RoundRobin) Name() string { return "round_robin" }

func (RoundRobin) Pick(_ *delivery.Delivery, pool []*driver.Driver, index int) (*driver.Driver, bool) {
	if len(pool) == 0 {
		return nil, false
	}
	return pool[index%len(pool)], true
}
