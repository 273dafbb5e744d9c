// Package queue is an in-memory priority job queue with bounded worker
// concurrency. Jobs carry a retry budget; a failed dispatch goes back to the
// pending heap until the budget runs out, then the outcome is delivered to
// the submitter and the job is forgotten
package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sleuth/internal/platform/errors"
	"sleuth/internal/platform/logger"
)

// DefaultDispatchTimeout bounds a single handler invocation
const DefaultDispatchTimeout = 60 * time.Second

// DefaultConcurrency is the worker pool size when WithConcurrency is not used
const DefaultConcurrency = 3

// Status is a job lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is a unit of queued work. Fields are snapshots; the queue owns the
// canonical copy until the job reaches a terminal state
type Job struct {
	ID                  uuid.UUID
	Payload             any
	Priority            int
	Retries             int
	MaxRetries          int
	Status              Status
	CreatedAt           time.Time
	ProcessingStartedAt *time.Time
	CompletedAt         *time.Time
	Err                 error

	seq uint64
}

// Outcome is what the submitter receives on the done channel
type Outcome struct {
	Result any
	Err    error
}

// ProcessFunc handles one dispatched job. A nil error completes the job;
// anything else consumes a retry
type ProcessFunc func(ctx context.Context, job *Job) (any, error)

// Snapshot is a point-in-time view of queue occupancy
type Snapshot struct {
	Pending       int   `json:"pending"`
	Processing    int   `json:"processing"`
	ActiveWorkers int   `json:"active_workers"`
	Total         int64 `json:"total_submitted"`
}

// Queue schedules jobs by priority, highest first, FIFO within a priority
type Queue struct {
	mu          sync.Mutex
	cond        *sync.Cond
	pending     jobHeap
	jobs        map[uuid.UUID]*Job
	waiters     map[uuid.UUID]chan Outcome
	handler     ProcessFunc
	concurrency int
	active      int
	timeout     time.Duration
	seq         uint64
	total       int64
	now         func() time.Time
	log         *logger.Logger
}

// Option configures a Queue
type Option func(*Queue)

// WithConcurrency caps simultaneous dispatches
func WithConcurrency(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.concurrency = n
		}
	}
}

// WithDispatchTimeout bounds each handler call
func WithDispatchTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithNow overrides the clock, for tests
func WithNow(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New builds an idle queue. Nothing dispatches until SetHandler is called
func New(opts ...Option) *Queue {
	q := &Queue{
		jobs:        make(map[uuid.UUID]*Job),
		waiters:     make(map[uuid.UUID]chan Outcome),
		concurrency: DefaultConcurrency,
		timeout:     DefaultDispatchTimeout,
		now:         time.Now,
		log:         logger.Named("queue"),
	}
	q.cond = sync.NewCond(&q.mu)
	for _, o := range opts {
		o(q)
	}
	return q
}

// SetHandler installs the dispatch function and starts draining the backlog
func (q *Queue) SetHandler(fn ProcessFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = fn
	q.scheduleLocked()
}

// Submit enqueues payload at priority and returns the job id plus a channel
// that receives exactly one Outcome when the job reaches a terminal state
func (q *Queue) Submit(payload any, priority, maxRetries int) (uuid.UUID, <-chan Outcome) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	q.total++
	job := &Job{
		ID:         uuid.New(),
		Payload:    payload,
		Priority:   priority,
		MaxRetries: maxRetries,
		Status:     StatusPending,
		CreatedAt:  q.now(),
		seq:        q.seq,
	}
	done := make(chan Outcome, 1)
	q.jobs[job.ID] = job
	q.waiters[job.ID] = done
	heap.Push(&q.pending, job)

	q.log.Debug().Str("job_id", job.ID.String()).Int("priority", priority).Msg("job submitted")
	q.scheduleLocked()
	return job.ID, done
}

// Status returns a copy of the job if it is still tracked. Terminal jobs
// are dropped once their outcome is delivered
func (q *Queue) Status(id uuid.UUID) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// MarkCompleted finishes a processing job with result. Calling it on a job
// that is already terminal or unknown is a no-op
func (q *Queue) MarkCompleted(id uuid.UUID, result any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completeLocked(id, result, nil)
}

// MarkFailed records a failed dispatch. The job is requeued while it has
// retry budget left, otherwise it fails terminally with err
func (q *Queue) MarkFailed(id uuid.UUID, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return
	}

	if job.Retries < job.MaxRetries {
		job.Retries++
		job.Status = StatusPending
		job.ProcessingStartedAt = nil
		heap.Push(&q.pending, job)
		q.log.Warn().
			Str("job_id", id.String()).
			Int("retry", job.Retries).
			Int("max_retries", job.MaxRetries).
			Err(err).
			Msg("job requeued")
		q.scheduleLocked()
		return
	}
	q.completeLocked(id, nil, err)
}

// Snapshot reports current occupancy
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	processing := 0
	for _, j := range q.jobs {
		if j.Status == StatusProcessing {
			processing++
		}
	}
	return Snapshot{
		Pending:       q.pending.Len(),
		Processing:    processing,
		ActiveWorkers: q.active,
		Total:         q.total,
	}
}

// Clear drops every pending job, failing each with a cancellation error.
// In-flight jobs are left to finish. Returns how many were dropped
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.pending.Len()
	for q.pending.Len() > 0 {
		job := heap.Pop(&q.pending).(*Job)
		job.Status = StatusProcessing // transitional, completeLocked requires it
		q.completeLocked(job.ID, nil, errors.Unavailablef("job cancelled: queue cleared"))
	}
	q.cond.Broadcast()
	return n
}

// Drain blocks until the queue has no pending or in-flight jobs
func (q *Queue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending.Len() > 0 || q.active > 0 {
		q.cond.Wait()
	}
}

func (q *Queue) scheduleLocked() {
	for q.handler != nil && q.active < q.concurrency && q.pending.Len() > 0 {
		job := heap.Pop(&q.pending).(*Job)
		started := q.now()
		job.Status = StatusProcessing
		job.ProcessingStartedAt = &started
		q.active++
		go q.dispatch(job)
	}
}

func (q *Queue) dispatch(job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	snapshot := *job
	result, err := q.handler(ctx, &snapshot)

	q.mu.Lock()
	q.active--
	if err != nil {
		q.mu.Unlock()
		q.MarkFailed(job.ID, err)
	} else {
		q.completeLocked(job.ID, result, nil)
		q.mu.Unlock()
	}

	q.mu.Lock()
	q.scheduleLocked()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// completeLocked moves a processing job to its terminal state, delivers the
// outcome and stops tracking the job
func (q *Queue) completeLocked(id uuid.UUID, result any, err error) {
	job, ok := q.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return
	}

	finished := q.now()
	job.CompletedAt = &finished
	if err != nil {
		job.Status = StatusFailed
		job.Err = err
		q.log.Warn().Str("job_id", id.String()).Err(err).Msg("job failed")
	} else {
		job.Status = StatusCompleted
		q.log.Debug().Str("job_id", id.String()).Msg("job completed")
	}

	if done, ok := q.waiters[id]; ok {
		done <- Outcome{Result: result, Err: err}
		close(done)
		delete(q.waiters, id)
	}
	delete(q.jobs, id)
}

// jobHeap orders by priority descending, submission order within a priority
type jobHeap []*Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) { *h = append(*h, x.(*Job)) }

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return job
}
