package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"compscope/server/config"
	"compscope/server/internal/alerts"
	"compscope/server/internal/database"
	"compscope/server/internal/notify"
	"compscope/server/internal/queue"
)

// DealSyncer runs the full sync pipeline for one deal.
type DealSyncer interface {
	SyncDeal(dealID uint) error
}

// Worker consumes sync jobs from the queue with transaction-safe retries.
type Worker struct {
	syncer    DealSyncer
	db        *database.Database
	queue     *queue.JobQueue
	config    *config.Config
	logger    *logrus.Logger
	alertGen  *alerts.Generator
	notifier  *notify.Service
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewWorker creates a new sync worker pool instance
func NewWorker(syncer DealSyncer, db *database.Database, q *queue.JobQueue, cfg *config.Config, logger *logrus.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		syncer: syncer,
		db:     db,
		queue:  q,
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetNotifier wires the alert generator and push channel used after a
// successful sync. Both are optional.
func (w *Worker) SetNotifier(gen *alerts.Generator, notifier *notify.Service) {
	w.alertGen = gen
	w.notifier = notifier
}

// Start begins processing jobs from the queue. Each job is taken by exactly
// one worker.
func (w *Worker) Start() {
	for i := 0; i < w.config.Sync.WorkerCount; i++ {
		w.waitGroup.Add(1)
		go w.processLoop()
	}
}

// Stop gracefully shuts down the worker pool
func (w *Worker) Stop() {
	w.cancel()
	w.waitGroup.Wait()
}

// processLoop handles the continuous processing of sync jobs
func (w *Worker) processLoop() {
	defer w.waitGroup.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue.Jobs():
			if !ok {
				return
			}
			if err := w.processJob(job); err != nil {
				w.logger.WithError(err).WithField("deal_id", job.DealID).
					Error("Sync job exhausted retries")
			}
		}
	}
}

// processJob handles a single sync job with retry logic
func (w *Worker) processJob(job *queue.SyncJob) error {
	var err error
	for attempt := 0; attempt <= w.config.Sync.MaxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Infof("Retrying sync job, attempt %d of %d", attempt, w.config.Sync.MaxRetries)
			time.Sleep(time.Duration(w.config.Sync.RetryDelay) * time.Second)
		}

		err = w.syncer.SyncDeal(job.DealID)
		if err == nil {
			w.logger.WithFields(logrus.Fields{
				"deal_id": job.DealID,
				"trigger": job.Trigger,
			}).Info("Successfully processed sync job")
			w.publishAlerts(job.DealID)
			return nil
		}

		w.logger.Errorf("Sync job failed: %v", err)
	}

	return fmt.Errorf("failed to process sync job after %d attempts: %w", w.config.Sync.MaxRetries, err)
}

// publishAlerts regenerates the deal's alerts after a sync and pushes any
// opportunity alerts to the notifier. Failures are logged, never fatal.
func (w *Worker) publishAlerts(dealID uint) {
	if w.alertGen == nil || w.notifier == nil {
		return
	}

	deal, err := w.db.GetDeal(dealID)
	if err != nil || deal == nil {
		return
	}
	count, err := w.db.CountComparables(dealID)
	if err != nil {
		return
	}

	for _, alert := range w.alertGen.Generate([]alerts.MarketSummary{alerts.BuildSummary(*deal, count)}) {
		if alert.Type != alerts.TypeOpportunity {
			continue
		}
		if err := w.notifier.NotifyAlert(alert); err != nil {
			w.logger.WithError(err).WithField("deal_id", dealID).
				Error("Failed to push opportunity alert")
		}
	}
}
