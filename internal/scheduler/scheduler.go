package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"compscope/server/internal/database"
	"compscope/server/internal/market"
	"compscope/server/internal/queue"
)

// Scheduler periodically re-checks metric freshness and enqueues deals that
// need a sync.
type Scheduler struct {
	db       *database.Database
	queue    *queue.JobQueue
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential sweep execution
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.Database, q *queue.JobQueue, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		queue:    q,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled freshness sweeps
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Run a startup sweep so never-synced deals don't wait for the hour mark
	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup freshness sweep")
		s.sweep("startup")
		s.logger.Info("Startup freshness sweep completed")
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			if t.Minute() == 0 {
				s.jobMutex.Lock()
				s.logger.Info("Starting scheduled freshness sweep")
				s.sweep("scheduled")
				s.logger.Info("Completed scheduled freshness sweep")
				s.jobMutex.Unlock()
			}
		}
	}
}

// sweep classifies every deal's freshness and enqueues the ones needing sync
func (s *Scheduler) sweep(trigger string) {
	deals, err := s.db.GetAllDeals()
	if err != nil {
		s.logger.WithError(err).Error("Freshness sweep failed to list deals")
		return
	}

	now := time.Now()
	for _, deal := range deals {
		if deal.Latitude == nil || deal.Longitude == nil {
			continue
		}

		last, err := s.db.LastMetricsCalculated(deal.ID)
		if err != nil {
			s.logger.WithError(err).WithField("deal_id", deal.ID).
				Error("Failed to read last metrics calculation")
			continue
		}
		hasHistory, err := s.db.HasSyncHistory(deal.ID)
		if err != nil {
			s.logger.WithError(err).WithField("deal_id", deal.ID).
				Error("Failed to read sync history")
			continue
		}

		status := market.ClassifyFreshness(last, hasHistory, now)
		if !status.NeedsSync {
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"deal_id": deal.ID,
			"status":  status.Status,
			"trigger": trigger,
		}).Info("Enqueuing sync job")

		if err := s.queue.Push(&queue.SyncJob{DealID: deal.ID, Trigger: trigger}); err != nil {
			s.logger.WithError(err).WithField("deal_id", deal.ID).
				Error("Failed to enqueue sync job")
		}
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
