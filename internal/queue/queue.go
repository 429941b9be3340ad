package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// SyncJob is a request to re-synchronize one deal.
type SyncJob struct {
	DealID  uint
	Trigger string // "startup", "scheduled", or "manual"
}

// JobQueue is an in-memory buffer of pending sync jobs. Jobs are buffered
// until a consumer receives them and each job goes to exactly one consumer,
// so jobs pushed before the workers start are never lost and never run twice.
type JobQueue struct {
	items   chan *SyncJob
	maxSize int
	closed  bool
	mu      sync.RWMutex
	logger  *logrus.Logger
}

// NewJobQueue creates a new sync-job queue with the specified buffer size
func NewJobQueue(bufferSize int, logger *logrus.Logger) *JobQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &JobQueue{
		items:   make(chan *SyncJob, bufferSize),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a sync job to the queue
func (q *JobQueue) Push(job *SyncJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- job:
		q.logger.WithFields(logrus.Fields{
			"deal_id": job.DealID,
			"trigger": job.Trigger,
		}).Debug("Pushed sync job to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Jobs returns the receive side of the queue. Each job is received by exactly
// one consumer. The channel closes when the queue closes; buffered jobs can
// still be drained after close.
func (q *JobQueue) Jobs() <-chan *SyncJob {
	return q.items
}

// Close stops the queue and prevents new jobs from being added
func (q *JobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.items)
	return nil
}

// Len returns the current number of jobs in the queue
func (q *JobQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *JobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
