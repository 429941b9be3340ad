package market

import "time"

// Freshness statuses for a deal's trade-area metrics.
const (
	StatusFresh       = "fresh"
	StatusStale       = "stale"
	StatusOld         = "old"
	StatusNeverSynced = "never_synced"
)

// Freshness thresholds. Metrics under a day old are served as-is; anything
// past three days is treated as effectively unsynced.
const (
	freshWindow = 24 * time.Hour
	staleWindow = 72 * time.Hour
)

// SyncStatus is the derived read-time freshness view. It is recomputed on
// every query, never persisted.
type SyncStatus struct {
	Status           string     `json:"status"`
	NeedsSync        bool       `json:"needs_sync"`
	LastCalculatedAt *time.Time `json:"last_calculated_at"`
}

// ClassifyFreshness buckets the elapsed time since the last successful
// metrics calculation. A deal with no calculation and no sync history at all
// is never_synced; one with sync history but no metrics row is old.
func ClassifyFreshness(lastCalculated *time.Time, hasSyncHistory bool, now time.Time) SyncStatus {
	if lastCalculated == nil {
		if !hasSyncHistory {
			return SyncStatus{Status: StatusNeverSynced, NeedsSync: true}
		}
		return SyncStatus{Status: StatusOld, NeedsSync: true}
	}

	elapsed := now.Sub(*lastCalculated)
	status := SyncStatus{LastCalculatedAt: lastCalculated}
	switch {
	case elapsed < freshWindow:
		status.Status = StatusFresh
		status.NeedsSync = false
	case elapsed <= staleWindow:
		status.Status = StatusStale
		status.NeedsSync = true
	default:
		status.Status = StatusOld
		status.NeedsSync = true
	}
	return status
}
