package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"compscope/server/internal/models"
)

func snapshot(date string, rent float64) models.MarketMetricSnapshot {
	return models.MarketMetricSnapshot{SnapshotDate: date, AvgRent: rent}
}

func TestRentGrowth12Mo_NoSnapshots(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, RentGrowth12Mo(nil, now))
}

func TestRentGrowth12Mo_SingleSnapshot(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	snaps := []models.MarketMetricSnapshot{snapshot("2026-06-01", 1500)}
	assert.Equal(t, 0.0, RentGrowth12Mo(snaps, now))
}

func TestRentGrowth12Mo_TenPercent(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	snaps := []models.MarketMetricSnapshot{
		snapshot("2026-01-15", 1000),
		snapshot("2026-08-15", 1100),
	}
	assert.InDelta(t, 10.0, RentGrowth12Mo(snaps, now), 1e-9)
}

func TestRentGrowth12Mo_UsesWindowEndpoints(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	// A dip in the middle must not affect the endpoint computation
	snaps := []models.MarketMetricSnapshot{
		snapshot("2026-01-01", 2000),
		snapshot("2026-04-01", 1500),
		snapshot("2026-08-01", 2200),
	}
	assert.InDelta(t, 10.0, RentGrowth12Mo(snaps, now), 1e-9)
}

func TestRentGrowth12Mo_IgnoresSnapshotsOutsideWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	snaps := []models.MarketMetricSnapshot{
		snapshot("2024-01-01", 500), // older than 12 months, excluded
		snapshot("2026-02-01", 1000),
		snapshot("2026-08-01", 1050),
	}
	assert.InDelta(t, 5.0, RentGrowth12Mo(snaps, now), 1e-9)
}

func TestRentGrowth12Mo_OnlyStaleSnapshots(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	snaps := []models.MarketMetricSnapshot{
		snapshot("2023-01-01", 1000),
		snapshot("2023-06-01", 1200),
	}
	assert.Equal(t, 0.0, RentGrowth12Mo(snaps, now))
}

func TestRentGrowth12Mo_ZeroBaseRent(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	snaps := []models.MarketMetricSnapshot{
		snapshot("2026-02-01", 0),
		snapshot("2026-08-01", 1000),
	}
	// Division by a zero base yields no signal, not infinity
	assert.Equal(t, 0.0, RentGrowth12Mo(snaps, now))
}

func TestRentGrowth12Mo_NegativeGrowth(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	snaps := []models.MarketMetricSnapshot{
		snapshot("2026-01-01", 2000),
		snapshot("2026-08-01", 1800),
	}
	assert.InDelta(t, -10.0, RentGrowth12Mo(snaps, now), 1e-9)
}
