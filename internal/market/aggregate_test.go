package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compscope/server/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestAggregateCandidates_Empty(t *testing.T) {
	agg := AggregateCandidates(nil)

	assert.Equal(t, 0, agg.PropertiesCount)
	assert.Nil(t, agg.AvgRentStudio)
	assert.Nil(t, agg.AvgRent1BR)
	assert.Nil(t, agg.AvgRent2BR)
	assert.Nil(t, agg.AvgRent3BR)
	assert.Nil(t, agg.AvgOccupancyRate)
	assert.Equal(t, 0, agg.TotalUnits)
	assert.Equal(t, 0, agg.AvailableUnits)
}

func TestAggregateCandidates_BedroomBuckets(t *testing.T) {
	candidates := []models.CandidateProperty{
		{MinBedrooms: 0, MinPrice: 1100, MaxPrice: 1300},
		{MinBedrooms: 1, MinPrice: 1400, MaxPrice: 1600},
		{MinBedrooms: 1, MinPrice: 1600, MaxPrice: 1800},
		{MinBedrooms: 2, MinPrice: 2000, MaxPrice: 2200},
	}

	agg := AggregateCandidates(candidates)

	require.NotNil(t, agg.AvgRentStudio)
	assert.Equal(t, 1200.0, *agg.AvgRentStudio)
	require.NotNil(t, agg.AvgRent1BR)
	assert.Equal(t, 1600.0, *agg.AvgRent1BR)
	require.NotNil(t, agg.AvgRent2BR)
	assert.Equal(t, 2100.0, *agg.AvgRent2BR)
	assert.Nil(t, agg.AvgRent3BR)
	assert.Equal(t, 4, agg.PropertiesCount)
}

func TestAggregateCandidates_FourPlusBedroomsExcludedFromBuckets(t *testing.T) {
	candidates := []models.CandidateProperty{
		{MinBedrooms: 4, MinPrice: 3000, MaxPrice: 3400, OccupancyRate: floatPtr(80)},
	}

	agg := AggregateCandidates(candidates)

	// No rent bucket, but units and occupancy still count
	assert.Nil(t, agg.AvgRentStudio)
	assert.Nil(t, agg.AvgRent3BR)
	assert.Equal(t, 1, agg.PropertiesCount)
	assert.Equal(t, 50, agg.TotalUnits)
	require.NotNil(t, agg.AvgOccupancyRate)
	assert.InDelta(t, 80.0, *agg.AvgOccupancyRate, 1e-9)
}

func TestAggregateCandidates_NoOccupancyDataMeansNilRate(t *testing.T) {
	candidates := []models.CandidateProperty{
		{MinBedrooms: 1, MinPrice: 1500, MaxPrice: 1500},
		{MinBedrooms: 2, MinPrice: 1800, MaxPrice: 1800},
	}

	agg := AggregateCandidates(candidates)

	// No occupancy observations means the rate is unknown: nil, not 0, not NaN
	assert.Nil(t, agg.AvgOccupancyRate)
	assert.Equal(t, 100, agg.TotalUnits)
	assert.Equal(t, 100, agg.AvailableUnits)
}

func TestAggregateCandidates_NoUnitsMeansNilOccupancy(t *testing.T) {
	agg := AggregateCandidates([]models.CandidateProperty{})
	assert.Nil(t, agg.AvgOccupancyRate)
}

func TestAggregateCandidates_UnknownOccupancyStillCountsUnits(t *testing.T) {
	candidates := []models.CandidateProperty{
		{MinBedrooms: 1, OccupancyRate: floatPtr(100)},
		{MinBedrooms: 1}, // unknown occupancy: 50 units, 0 occupied
	}

	agg := AggregateCandidates(candidates)

	assert.Equal(t, 100, agg.TotalUnits)
	assert.InDelta(t, 50.0, agg.OccupiedUnits, 1e-9)
	require.NotNil(t, agg.AvgOccupancyRate)
	assert.InDelta(t, 50.0, *agg.AvgOccupancyRate, 1e-9)
	assert.Equal(t, 50, agg.AvailableUnits)
}

func TestAggregateCandidates_AvailableUnitsNeverNegative(t *testing.T) {
	candidates := []models.CandidateProperty{
		{MinBedrooms: 1, OccupancyRate: floatPtr(100)},
		{MinBedrooms: 2, OccupancyRate: floatPtr(100)},
	}

	agg := AggregateCandidates(candidates)
	assert.GreaterOrEqual(t, agg.AvailableUnits, 0)
	assert.Equal(t, 0, agg.AvailableUnits)
}

func TestCompetitionIntensity(t *testing.T) {
	assert.Equal(t, IntensityLow, CompetitionIntensity(0))
	assert.Equal(t, IntensityLow, CompetitionIntensity(4))
	assert.Equal(t, IntensityMedium, CompetitionIntensity(5))
	assert.Equal(t, IntensityMedium, CompetitionIntensity(10))
	assert.Equal(t, IntensityMedium, CompetitionIntensity(14))
	assert.Equal(t, IntensityHigh, CompetitionIntensity(15))
	assert.Equal(t, IntensityHigh, CompetitionIntensity(20))
}

func TestBlendedRent(t *testing.T) {
	assert.Equal(t, 1500.0, BlendedRent(floatPtr(1400), floatPtr(1600)))

	// Missing tiers count as zero in the blend
	assert.Equal(t, 700.0, BlendedRent(floatPtr(1400), nil))
	assert.Equal(t, 800.0, BlendedRent(nil, floatPtr(1600)))
	assert.Equal(t, 0.0, BlendedRent(nil, nil))
}
