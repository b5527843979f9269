package routing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"rentradar/server/internal/models"
)

// stepLength returns the step's length in meters, falling back to the
// geodesic distance between its endpoints when the provider gave none.
func stepLength(step models.RouteStep) float64 {
	if step.DistanceMeters > 0 {
		return float64(step.DistanceMeters)
	}
	start := orb.Point{step.Start.Lng, step.Start.Lat}
	end := orb.Point{step.End.Lng, step.End.Lat}
	return geo.DistanceHaversine(start, end)
}

// midpointLabel picks where the duration label sits: the step endpoint
// whose cumulative distance is nearest to half the route's total length.
// Steps vary wildly in length, so the middle array index can land far from
// the visual middle of the path.
func midpointLabel(steps []models.RouteStep) models.Coordinate {
	if len(steps) == 0 {
		return models.Coordinate{}
	}

	var total float64
	lengths := make([]float64, len(steps))
	for i, step := range steps {
		lengths[i] = stepLength(step)
		total += lengths[i]
	}

	half := total / 2
	var cumulative float64
	best := steps[0].End
	bestDelta := -1.0
	for i, step := range steps {
		cumulative += lengths[i]
		delta := cumulative - half
		if delta < 0 {
			delta = -delta
		}
		if bestDelta < 0 || delta < bestDelta {
			bestDelta = delta
			best = step.End
		}
	}
	return best
}
