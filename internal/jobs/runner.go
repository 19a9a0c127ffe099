package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the job queue has no capacity.
var ErrQueueFull = errors.New("job queue is full, try again later")

// ErrRunnerStopped is returned by Submit after the runner has been stopped.
var ErrRunnerStopped = errors.New("job runner has been stopped")

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// MaxAttempts is how many times a job is tried before giving up
	MaxAttempts int

	// RetryDelay is the base delay between attempts; the actual delay
	// grows linearly with the attempt number
	RetryDelay time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
	}
}

// queuedJob pairs a job with its attempt counter.
type queuedJob struct {
	job     Job
	attempt int
}

// Runner manages background job processing with a fixed worker pool.
// Failed jobs are retried with a linearly growing delay up to
// RunnerConfig.MaxAttempts total attempts.
type Runner struct {
	jobChan    chan queuedJob
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)

	mu      sync.Mutex
	stopped bool
}

// NewRunner creates a new Runner. If logger is nil, a default logger is used.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultRunnerConfig().MaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		jobChan:    make(chan queuedJob, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "job_runner"),
		errHandler: func(job Job, err error) {
			logger.Error("job permanently failed",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom handler called when a job has
// exhausted all attempts.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Submit adds a new job to the queue.
// Returns ErrQueueFull if the queue has no capacity and ErrRunnerStopped
// after Stop has been called.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrRunnerStopped
	}
	r.mu.Unlock()

	select {
	case r.jobChan <- queuedJob{job: job, attempt: 1}:
		r.logger.Debug("job submitted",
			"job_id", job.ID(),
			"job_type", job.Type())
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop gracefully shuts down the runner. Queued jobs that have not started
// are dropped; running jobs finish their current attempt.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancelFunc()
	r.wg.Wait()
}

// worker processes jobs from the queue
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case qj := <-r.jobChan:
			r.processJob(qj, id)
		}
	}
}

// processJob handles a single attempt of a job, requeueing on failure
// until MaxAttempts is reached.
func (r *Runner) processJob(qj queuedJob, workerID int) {
	logger := r.logger.With(
		"job_id", qj.job.ID(),
		"job_type", qj.job.Type(),
		"worker_id", workerID,
		"attempt", qj.attempt,
	)

	logger.Info("processing job")

	err := qj.job.Execute(r.ctx)
	if err == nil {
		logger.Info("job completed successfully")
		return
	}

	logger.Error("job attempt failed", "error", err)

	if qj.attempt >= r.config.MaxAttempts {
		r.errHandler(qj.job, err)
		return
	}

	// Linear backoff between attempts.
	delay := time.Duration(qj.attempt) * r.config.RetryDelay
	select {
	case <-time.After(delay):
	case <-r.ctx.Done():
		logger.Debug("runner stopped during retry delay")
		return
	}

	select {
	case r.jobChan <- queuedJob{job: qj.job, attempt: qj.attempt + 1}:
	default:
		logger.Error("failed to requeue job, queue is full")
		r.errHandler(qj.job, err)
	}
}

// FuncJob wraps a function as a Job, for callers that don't need a
// dedicated type.
type FuncJob struct {
	id      uuid.UUID
	jobType string
	fn      func(ctx context.Context) error
}

// NewFuncJob creates a FuncJob with a fresh ID.
func NewFuncJob(jobType string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{
		id:      uuid.New(),
		jobType: jobType,
		fn:      fn,
	}
}

// ID implements Job.
func (j *FuncJob) ID() uuid.UUID { return j.id }

// Type implements Job.
func (j *FuncJob) Type() string { return j.jobType }

// Execute implements Job.
func (j *FuncJob) Execute(ctx context.Context) error { return j.fn(ctx) }
