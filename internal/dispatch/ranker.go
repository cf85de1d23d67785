package dispatch

import (
	"sort"

	"swift-dispatch/internal/common"
	"swift-dispatch/internal/delivery"
	"swift-dispatch/internal/driver"
)

// Candidate is a driver eligible for a specific delivery, annotated with the
// approximate distance to its pickup point.
type Candidate struct {
	Driver     *driver.Driver `json:"driver"`
	DistanceKM float64        `json:"distance_km"`
}

// Rank filters the pool down to available drivers and orders them best first:
// ascending distance to the pickup coordinates, rating descending as the
// deterministic tie-break. An empty eligible set yields an empty slice.
func Rank(d *delivery.Delivery, pool []*driver.Driver) []Candidate {
	pickup := d.PickupAddress.Coordinates

	candidates := make([]Candidate, 0, len(pool))
	for _, drv := range pool {
		if !drv.IsAvailable() {
			continue
		}
		candidates = append(candidates, Candidate{
			Driver:     drv,
			DistanceKM: common.ApproxDistanceKM(drv.Location, pickup),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceKM != candidates[j].DistanceKM {
			return candidates[i].DistanceKM < candidates[j].DistanceKM
		}
		return candidates[i].Driver.Rating > candidates[j].Driver.Rating
	})

	return candidates
}

// BestMatch returns the top-ranked candidate, or false when no driver is
// eligible. Callers decide whether "no candidate" is an error.
func BestMatch(d *delivery.Delivery, pool []*driver.Driver) (Candidate, bool) {
	ranked := Rank(d, pool)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}
