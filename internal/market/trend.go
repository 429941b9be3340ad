package market

import (
	"time"

	"compscope/server/internal/models"
)

// SnapshotDateLayout is the calendar-date key format for metric snapshots.
const SnapshotDateLayout = "2006-01-02"

// RentGrowth12Mo computes the trailing rent growth percentage from a series
// of historical snapshots. It takes the earliest and latest snapshot inside
// the trailing 12-month window, not a regression fit. With fewer than two
// in-window snapshots it returns exactly 0: a "no signal" default that is
// indistinguishable from computed flat growth.
func RentGrowth12Mo(snapshots []models.MarketMetricSnapshot, now time.Time) float64 {
	cutoff := now.AddDate(-1, 0, 0)

	var window []models.MarketMetricSnapshot
	for _, s := range snapshots {
		d, err := time.Parse(SnapshotDateLayout, s.SnapshotDate)
		if err != nil {
			continue
		}
		if !d.Before(cutoff) {
			window = append(window, s)
		}
	}

	if len(window) < 2 {
		return 0
	}

	oldest := window[0]
	newest := window[0]
	oldestDate, _ := time.Parse(SnapshotDateLayout, oldest.SnapshotDate)
	newestDate := oldestDate
	for _, s := range window[1:] {
		d, _ := time.Parse(SnapshotDateLayout, s.SnapshotDate)
		if d.Before(oldestDate) {
			oldest = s
			oldestDate = d
		}
		if d.After(newestDate) {
			newest = s
			newestDate = d
		}
	}

	if oldest.AvgRent == 0 {
		return 0
	}
	return ((newest.AvgRent - oldest.AvgRent) / oldest.AvgRent) * 100
}
