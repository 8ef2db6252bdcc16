package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/contactscan/internal/model"
)

// ErrRunnerStopped is returned by Submit after the runner shut down.
var ErrRunnerStopped = errors.New("task runner is stopped")

// ErrQueueFull is returned by Submit when the submission queue is at
// capacity.
var ErrQueueFull = errors.New("task queue is full")

// Store persists tasks through their lifecycle. The SQLite TaskDB
// implements it; tests use an in-memory map.
type Store interface {
	// SaveTask inserts a new task record.
	SaveTask(ctx context.Context, task *model.Task) error

	// UpdateTask updates an existing task's status, result, and error.
	UpdateTask(ctx context.Context, task *model.Task) error

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, id string) (*model.Task, error)
}

// CrawlFunc runs one crawl for a seed URL. The crawler facade satisfies
// this signature; tests substitute fakes.
type CrawlFunc func(ctx context.Context, seedURL string) (*model.CrawlResult, error)

// Runner executes submitted crawl tasks on a bounded worker pool.
//
// Design decision: The runner owns all background execution; the crawl
// core stays a plain blocking call. Submission is explicit and returns a
// task ID the caller polls through the store, so the "is it done yet"
// question has a durable answer even across process restarts.
type Runner struct {
	// store persists task state.
	store Store

	// crawl runs one crawl per task.
	crawl CrawlFunc

	// queue feeds submitted task IDs to the workers.
	queue chan *model.Task

	// workers is the worker pool size.
	workers int

	// group tracks worker goroutines.
	group *errgroup.Group

	// mu guards stopped and started.
	mu      sync.Mutex
	started bool
	stopped bool
}

// queueCapacity bounds pending submissions. Deep backlogs mean the caller
// is submitting far faster than crawls complete; failing fast beats
// buffering unboundedly.
const queueCapacity = 64

// NewRunner creates a Runner with the given store and crawl function.
// Worker counts below 1 are clamped to 1.
func NewRunner(store Store, crawl CrawlFunc, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		store:   store,
		crawl:   crawl,
		queue:   make(chan *model.Task, queueCapacity),
		workers: workers,
	}
}

// Start launches the worker pool. Workers run until the context is
// cancelled or Stop closes the queue.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	r.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		r.group.Go(func() error {
			r.work(ctx)
			return nil
		})
	}
}

// work consumes tasks from the queue until it closes or the context ends.
func (r *Runner) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-r.queue:
			if !ok {
				return
			}
			r.run(ctx, task)
		}
	}
}

// run executes one task and persists its terminal state.
func (r *Runner) run(ctx context.Context, task *model.Task) {
	task.Status = model.TaskRunning
	task.UpdatedAt = time.Now().UTC()
	// Best effort: a failed running-state write must not lose the crawl.
	_ = r.store.UpdateTask(ctx, task)

	result, err := r.crawl(ctx, task.SeedURL)
	if err != nil {
		task.Status = model.TaskFailed
		task.Error = err.Error()
	} else {
		task.Status = model.TaskCompleted
		task.Result = result
	}
	task.UpdatedAt = time.Now().UTC()

	// The terminal write must not be lost to the shutdown context.
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_ = r.store.UpdateTask(updateCtx, task)
}

// Submit registers a crawl for the seed URL and returns its task ID.
// The task is persisted as pending before it is queued, so a caller can
// poll the ID immediately.
func (r *Runner) Submit(ctx context.Context, seedURL string) (string, error) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return "", ErrRunnerStopped
	}
	r.mu.Unlock()

	now := time.Now().UTC()
	task := &model.Task{
		ID:        uuid.NewString(),
		SeedURL:   seedURL,
		Status:    model.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.store.SaveTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to persist task: %w", err)
	}

	// Stop closes the queue while holding the mutex, so the enqueue must
	// run under the same lock: an unguarded send races a concurrent Stop
	// into a send on a closed channel.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		task.Status = model.TaskFailed
		task.Error = ErrRunnerStopped.Error()
		task.UpdatedAt = time.Now().UTC()
		_ = r.store.UpdateTask(ctx, task)
		return "", ErrRunnerStopped
	}

	select {
	case r.queue <- task:
		return task.ID, nil
	default:
		task.Status = model.TaskFailed
		task.Error = ErrQueueFull.Error()
		task.UpdatedAt = time.Now().UTC()
		_ = r.store.UpdateTask(ctx, task)
		return "", ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight tasks to finish.
// Further Submit calls fail with ErrRunnerStopped.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	started := r.started
	// Closed under the lock; Submit enqueues under the same lock.
	close(r.queue)
	r.mu.Unlock()

	if started {
		_ = r.group.Wait()
	}
}

// Wait polls the store until the task reaches a terminal state, the poll
// interval elapsing between reads. It returns the terminal task.
func (r *Runner) Wait(ctx context.Context, taskID string, pollInterval time.Duration) (*model.Task, error) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		task, err := r.store.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if task.Status.IsTerminal() {
			return task, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
