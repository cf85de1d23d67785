package performance

import (
	"context"
	"math"
	"sort"

	"swift-dispatch/internal/driver"
	domainerrors "swift-dispatch/internal/errors"
	"swift-dispatch/internal/store"
)

// Metrics is a read-only projection of a driver's historical counters.
type Metrics struct {
	DriverID         string  `json:"driver_id"`
	Name             string  `json:"name"`
	Rating           float64 `json:"rating"`
	TotalDeliveries  int     `json:"total_deliveries"`
	PerformanceScore int     `json:"performance_score"`
	Efficiency       float64 `json:"efficiency"`
	DeliveriesPerDay int     `json:"deliveries_per_day"`
}

// RatingBands buckets driver ids by rating: excellent >=4.5, good [4.0,4.5),
// average [3.5,4.0), needs improvement below that.
type RatingBands struct {
	Excellent        []string `json:"excellent"`
	Good             []string `json:"good"`
	Average          []string `json:"average"`
	NeedsImprovement []string `json:"needs_improvement"`
}

// Summary is the fleet-wide comparison view. TopPerformer is ranked by raw
// delivery volume, deliberately a different metric than the leaderboard's
// performance score.
type Summary struct {
	Leaderboard  []Metrics   `json:"leaderboard"`
	Bands        RatingBands `json:"bands"`
	TopPerformer *Metrics    `json:"top_performer,omitempty"`
}

type Engine struct {
	drivers store.DriverStore
}

func NewEngine(drivers store.DriverStore) *Engine {
	return &Engine{drivers: drivers}
}

// Compute derives the metrics for a single driver record.
func Compute(d *driver.Driver) Metrics {
	return Metrics{
		DriverID:         d.ID,
		Name:             d.Name,
		Rating:           d.Rating,
		TotalDeliveries:  d.TotalDeliveries,
		PerformanceScore: int(math.Round(d.Rating*20 + float64(d.TotalDeliveries)/10)),
		Efficiency:       math.Min(100, float64(d.TotalDeliveries)/1000*100),
		DeliveriesPerDay: int(math.Round(float64(d.TotalDeliveries) / 30)),
	}
}

func (e *Engine) GetPerformance(ctx context.Context, driverID string) (*Metrics, error) {
	d, err := e.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	m := Compute(d)
	return &m, nil
}

// FleetEfficiency ranks the whole fleet by performance score, descending.
// Ties keep store order (stable sort).
func (e *Engine) FleetEfficiency(ctx context.Context) ([]Metrics, error) {
	fleet, err := e.drivers.GetAll(ctx)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load fleet", err)
	}

	metrics := make([]Metrics, 0, len(fleet))
	for _, d := range fleet {
		metrics = append(metrics, Compute(d))
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].PerformanceScore > metrics[j].PerformanceScore
	})

	return metrics, nil
}

func (e *Engine) Comparison(ctx context.Context) (*Summary, error) {
	fleet, err := e.drivers.GetAll(ctx)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load fleet", err)
	}

	summary := &Summary{
		Bands: RatingBands{
			Excellent:        []string{},
			Good:             []string{},
			Average:          []string{},
			NeedsImprovement: []string{},
		},
	}

	var top *driver.Driver
	for _, d := range fleet {
		summary.Leaderboard = append(summary.Leaderboard, Compute(d))

		switch {
		case d.Rating >= 4.5:
			summary.Bands.Excellent = append(summary.Bands.Excellent, d.ID)
		case d.Rating >= 4.0:
			summary.Bands.Good = append(summary.Bands.Good, d.ID)
		case d.Rating >= 3.5:
			summary.Bands.Average = append(summary.Bands.Average, d.ID)
		default:
			summary.Bands.NeedsImprovement = append(summary.Bands.NeedsImprovement, d.ID)
		}

		if top == nil || d.TotalDeliveries > top.TotalDeliveries {
			top = d
		}
	}

	sort.SliceStable(summary.Leaderboard, func(i, j int) bool {
		return summary.Leaderboard[i].PerformanceScore > summary.Leaderboard[j].PerformanceScore
	})

	if top != nil {
		m := Compute(top)
		summary.TopPerformer = &m
	}

	return summary, nil
}
