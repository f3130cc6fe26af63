package nutrition

import (
	"math"
	"time"
)

// Assumed steady weekly rates for the projection. These are display
// approximations, not a physiological model.
const (
	LossKGPerWeek = 0.5
	GainKGPerWeek = 0.25
)

// ProjectionPoint is one week of a projected weight series.
type ProjectionPoint struct {
	Week     int     `json:"week"`
	WeightKG float64 `json:"weight_kg"`
}

// WeeksToTarget estimates whole weeks to move from current to target at the
// fixed rate for pace. A target already reached (or on the wrong side for
// the direction) yields 0, as does maintenance.
func WeeksToTarget(currentKG, targetKG float64, pace Pace) int {
	var delta, rate float64
	switch pace {
	case PaceLose:
		delta, rate = currentKG-targetKG, LossKGPerWeek
	case PaceGain:
		delta, rate = targetKG-currentKG, GainKGPerWeek
	default:
		return 0
	}
	if delta <= 0 {
		return 0
	}
	return int(math.Ceil(delta / rate))
}

// ProjectWeights linearly interpolates from current to target over weeks,
// returning weeks+1 points (week 0 through the final week). A non-positive
// week count yields the single point {0, current}.
func ProjectWeights(currentKG, targetKG float64, weeks int) []ProjectionPoint {
	if weeks <= 0 {
		return []ProjectionPoint{{Week: 0, WeightKG: currentKG}}
	}
	step := (targetKG - currentKG) / float64(weeks)
	points := make([]ProjectionPoint, weeks+1)
	for i := 0; i <= weeks; i++ {
		points[i] = ProjectionPoint{Week: i, WeightKG: currentKG + float64(i)*step}
	}
	// Pin the last point so rounding in step never misses the target.
	points[weeks].WeightKG = targetKG
	return points
}

// TargetDate returns the date reached after weeks whole weeks from start.
func TargetDate(start time.Time, weeks int) time.Time {
	return start.AddDate(0, 0, 7*weeks)
}
