package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFreshness_Fresh(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * time.Hour)

	status := ClassifyFreshness(&last, true, now)

	assert.Equal(t, StatusFresh, status.Status)
	assert.False(t, status.NeedsSync)
	assert.Equal(t, &last, status.LastCalculatedAt)
}

func TestClassifyFreshness_Stale(t *testing.T) {
	now := time.Now()
	last := now.Add(-48 * time.Hour)

	status := ClassifyFreshness(&last, true, now)

	assert.Equal(t, StatusStale, status.Status)
	assert.True(t, status.NeedsSync)
}

func TestClassifyFreshness_Old(t *testing.T) {
	now := time.Now()
	last := now.Add(-100 * time.Hour)

	status := ClassifyFreshness(&last, true, now)

	assert.Equal(t, StatusOld, status.Status)
	assert.True(t, status.NeedsSync)
}

func TestClassifyFreshness_NeverSynced(t *testing.T) {
	status := ClassifyFreshness(nil, false, time.Now())

	assert.Equal(t, StatusNeverSynced, status.Status)
	assert.True(t, status.NeedsSync)
	assert.Nil(t, status.LastCalculatedAt)
}

func TestClassifyFreshness_SyncHistoryButNoMetrics(t *testing.T) {
	// A deal with sync-log rows but no metrics row is old, not never-synced
	status := ClassifyFreshness(nil, true, time.Now())

	assert.Equal(t, StatusOld, status.Status)
	assert.True(t, status.NeedsSync)
}

func TestClassifyFreshness_Boundaries(t *testing.T) {
	now := time.Now()

	justUnderDay := now.Add(-24*time.Hour + time.Minute)
	assert.Equal(t, StatusFresh, ClassifyFreshness(&justUnderDay, true, now).Status)

	exactlyDay := now.Add(-24 * time.Hour)
	assert.Equal(t, StatusStale, ClassifyFreshness(&exactlyDay, true, now).Status)

	justOverThreeDays := now.Add(-72*time.Hour - time.Minute)
	assert.Equal(t, StatusOld, ClassifyFreshness(&justOverThreeDays, true, now).Status)
}
