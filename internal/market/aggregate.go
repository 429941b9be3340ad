package market

import "compscope/server/internal/models"

// Competition intensity classifications.
const (
	IntensityLow    = "LOW"
	IntensityMedium = "MEDIUM"
	IntensityHigh   = "HIGH"
)

// unitsPerProperty is a rough heuristic: the upstream feed carries no
// per-property unit counts, so every property is assumed to contribute a
// fixed 50 units. Do not tune this without revisiting downstream scoring.
const unitsPerProperty = 50

// Aggregate is the reduced market picture for a set of candidate properties.
// Rent tiers are nil when no candidate of that bedroom count was observed.
type Aggregate struct {
	PropertiesCount  int
	AvgRentStudio    *float64
	AvgRent1BR       *float64
	AvgRent2BR       *float64
	AvgRent3BR       *float64
	AvgOccupancyRate *float64
	TotalUnits       int
	OccupiedUnits    float64
	AvailableUnits   int
}

// AggregateCandidates reduces a candidate set into per-bedroom rent averages,
// occupancy and unit estimates. Candidates with more than 3 bedrooms are
// excluded from the rent buckets but still count toward unit totals.
// Properties with unknown occupancy contribute zero occupied units while
// still adding to total units, which understates occupancy for sparse data;
// that trade-off is deliberate and must not be corrected here. A set where
// no candidate reports occupancy yields a nil rate, never zero.
func AggregateCandidates(candidates []models.CandidateProperty) Aggregate {
	agg := Aggregate{PropertiesCount: len(candidates)}

	buckets := make(map[int][]float64, 4)
	occupancyKnown := false
	for _, c := range candidates {
		avgPrice := (c.MinPrice + c.MaxPrice) / 2
		if c.MinBedrooms <= 3 {
			buckets[c.MinBedrooms] = append(buckets[c.MinBedrooms], avgPrice)
		}

		agg.TotalUnits += unitsPerProperty
		if c.OccupancyRate != nil {
			occupancyKnown = true
			agg.OccupiedUnits += unitsPerProperty * (*c.OccupancyRate / 100)
		}
	}

	agg.AvgRentStudio = bucketMean(buckets[0])
	agg.AvgRent1BR = bucketMean(buckets[1])
	agg.AvgRent2BR = bucketMean(buckets[2])
	agg.AvgRent3BR = bucketMean(buckets[3])

	if occupancyKnown && agg.TotalUnits > 0 {
		rate := (agg.OccupiedUnits / float64(agg.TotalUnits)) * 100
		agg.AvgOccupancyRate = &rate
	}

	available := agg.TotalUnits - int(agg.OccupiedUnits)
	if available < 0 {
		available = 0
	}
	agg.AvailableUnits = available

	return agg
}

// bucketMean returns the mean of a rent bucket, or nil for an empty bucket.
// An empty tier must stay nil, never zero.
func bucketMean(prices []float64) *float64 {
	if len(prices) == 0 {
		return nil
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	return &mean
}

// CompetitionIntensity classifies market crowding from the candidate count.
func CompetitionIntensity(count int) string {
	switch {
	case count < 5:
		return IntensityLow
	case count < 15:
		return IntensityMedium
	default:
		return IntensityHigh
	}
}

// BlendedRent is the snapshot rent: the mean of the 1BR and 2BR averages.
// A missing tier counts as zero in the blend.
func BlendedRent(avg1BR, avg2BR *float64) float64 {
	var one, two float64
	if avg1BR != nil {
		one = *avg1BR
	}
	if avg2BR != nil {
		two = *avg2BR
	}
	return (one + two) / 2
}
