package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.jetify.com/typeid"
)

// ErrQueueFull is returned by Enqueue when MaxPending jobs are waiting.
var ErrQueueFull = errors.New("deferral queue is full")

// NewJobID returns a new TypeID for a deferred job
func NewJobID() string {
	id, err := typeid.WithPrefix("job")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Job is one deferred invocation waiting for the loop.
type Job struct {
	ID       string
	Name     string
	QueuedAt time.Time
	Run      func() error
}

// LoopOptions configures a new Loop
type LoopOptions struct {
	// MaxPending bounds the queue. Zero means unbounded.
	MaxPending int
	Logger     *slog.Logger
}

// Loop is the host's cooperative scheduler. Any goroutine may enqueue work,
// but jobs only run on the goroutine calling RunPending or Run, which must
// be the goroutine that owns the interpreter.
type Loop struct {
	mu         sync.Mutex
	queue      []*Job
	maxPending int
	wake       chan struct{}
	logger     *slog.Logger

	ran    int
	failed int
}

// NewLoop creates an empty loop
func NewLoop(opts LoopOptions) *Loop {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		maxPending: opts.MaxPending,
		wake:       make(chan struct{}, 1),
		logger:     opts.Logger,
	}
}

// Enqueue appends a job and returns its ID. It never runs the job.
func (l *Loop) Enqueue(name string, run func() error) (string, error) {
	if run == nil {
		return "", fmt.Errorf("job %q has no function", name)
	}
	l.mu.Lock()
	if l.maxPending > 0 && len(l.queue) >= l.maxPending {
		l.mu.Unlock()
		return "", ErrQueueFull
	}
	job := &Job{ID: NewJobID(), Name: name, QueuedAt: time.Now(), Run: run}
	l.queue = append(l.queue, job)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	l.logger.Debug("job queued", "job_id", job.ID, "name", name)
	return job.ID, nil
}

// Pending returns the number of queued jobs.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Stats returns how many jobs have run and how many of those failed.
func (l *Loop) Stats() (ran, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ran, l.failed
}

// RunPending runs the jobs that were queued when it was called, in order.
// Jobs queued while draining wait for the next call. A failing job is
// logged and does not stop the drain. It returns the number of jobs run.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, job := range batch {
		l.runJob(job)
	}
	return len(batch)
}

// Run drains the queue whenever work arrives until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) runJob(job *Job) {
	start := time.Now()
	err := runRecovered(job.Run)

	l.mu.Lock()
	l.ran++
	if err != nil {
		l.failed++
	}
	l.mu.Unlock()

	if err != nil {
		l.logger.Error("deferred job failed",
			"job_id", job.ID,
			"name", job.Name,
			"error", err)
		return
	}
	l.logger.Debug("deferred job completed",
		"job_id", job.ID,
		"name", job.Name,
		"waited", start.Sub(job.QueuedAt),
		"duration", time.Since(start))
}

func runRecovered(run func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in deferred job: %v", r)
		}
	}()
	return run()
}
