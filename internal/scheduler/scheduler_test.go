package scheduler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compscope/server/internal/database"
	"compscope/server/internal/models"
	"compscope/server/internal/queue"
)

func setupScheduler(t *testing.T) (*Scheduler, *database.Database, *queue.JobQueue) {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	q := queue.NewJobQueue(10, logger)
	return NewScheduler(db, q, logger), db, q
}

func TestSweep_EnqueuesNeverSyncedDeals(t *testing.T) {
	s, db, q := setupScheduler(t)

	lat, lon := 33.75, -84.39
	deal := &models.Deal{Name: "Unsynced", Status: "active", Latitude: &lat, Longitude: &lon}
	require.NoError(t, db.CreateDeal(deal))

	s.sweep("startup")

	assert.Equal(t, 1, q.Len())
}

func TestSweep_SkipsDealsWithoutCoordinates(t *testing.T) {
	s, db, q := setupScheduler(t)

	require.NoError(t, db.CreateDeal(&models.Deal{Name: "No Coords", Status: "active"}))

	s.sweep("scheduled")

	assert.Equal(t, 0, q.Len())
}

func TestSweep_SkipsFreshDeals(t *testing.T) {
	s, db, q := setupScheduler(t)

	lat, lon := 33.75, -84.39
	deal := &models.Deal{Name: "Fresh", Status: "active", Latitude: &lat, Longitude: &lon}
	require.NoError(t, db.CreateDeal(deal))

	require.NoError(t, db.UpsertTradeAreaMetrics(&models.TradeAreaMetrics{
		DealID:               deal.ID,
		TradeAreaID:          1,
		CompetitionIntensity: "LOW",
		CalculatedAt:         time.Now().Add(-1 * time.Hour),
	}))

	s.sweep("scheduled")

	assert.Equal(t, 0, q.Len())
}

func TestSweep_EnqueuesStaleDeals(t *testing.T) {
	s, db, q := setupScheduler(t)

	lat, lon := 33.75, -84.39
	deal := &models.Deal{Name: "Stale", Status: "active", Latitude: &lat, Longitude: &lon}
	require.NoError(t, db.CreateDeal(deal))

	require.NoError(t, db.UpsertTradeAreaMetrics(&models.TradeAreaMetrics{
		DealID:               deal.ID,
		TradeAreaID:          1,
		CompetitionIntensity: "LOW",
		CalculatedAt:         time.Now().Add(-48 * time.Hour),
	}))

	s.sweep("scheduled")

	assert.Equal(t, 1, q.Len())
}

func TestScheduler_StartStop(t *testing.T) {
	s, _, _ := setupScheduler(t)

	s.Start()
	time.Sleep(100 * time.Millisecond) // Give the startup sweep time to run
	s.Stop()
}
