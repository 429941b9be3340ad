package scoring

import (
	"math"

	"compscope/server/internal/models"
)

// Fixed scoring weights. The score is a deterministic formula, not a learned
// model: distance dominates, with small bonuses for new construction and
// well-occupied buildings.
const (
	distanceFullPenalty = 30.0
	distanceRange       = 3.0
	recencyBonus        = 10.0
	recencyYear         = 2020
	occupancyBonus      = 10.0
	occupancyFloor      = 90.0
)

// Score converts a candidate property and its distance from the deal anchor
// into a 0-100 comparability score. Closer, newer, fuller properties rank
// higher; the result is clamped and rounded to an integer.
func Score(candidate models.CandidateProperty, distanceMiles float64) int {
	score := 100.0

	// Up to 30 points lost at 3 miles, unbounded beyond before the clamp.
	score -= (distanceMiles / distanceRange) * distanceFullPenalty

	if candidate.YearBuilt != nil && *candidate.YearBuilt >= recencyYear {
		score += recencyBonus
	}
	if candidate.OccupancyRate != nil && *candidate.OccupancyRate >= occupancyFloor {
		score += occupancyBonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
