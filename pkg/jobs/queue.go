package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Enqueue when every buffer slot is taken.
var ErrQueueFull = errors.New("queue full")

// Task is a unit of queued background work carrying a typed payload.
type Task[T any] struct {
	ID       string
	Kind     string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes a task.
type Handler[T any] func(context.Context, Task[T]) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// InterItemDelay is the pause each worker takes after finishing a task.
	InterItemDelay time.Duration
	Logger         *zap.Logger
}

// Queue is a lightweight in-memory task dispatcher backed by goroutines.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	// onGiveUp runs once a task has failed more than maxRetries times
	onGiveUp func(Task[T], error)

	workers    int
	maxRetries int
	retryDelay time.Duration
	pace       time.Duration
	logger     *zap.Logger

	tasks   chan Task[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		pace:       cfg.InterItemDelay,
		logger:     cfg.Logger,
		tasks:      make(chan Task[T], cfg.BufferSize),
	}
}

// OnGiveUp registers a callback for tasks that exhausted their retries.
// Must be called before Start.
func (q *Queue[T]) OnGiveUp(fn func(Task[T], error)) {
	q.onGiveUp = fn
}

// Start begins worker consumption. Safe to call once.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers, "inter_item_delay", q.pace)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a task onto the queue without waiting. It returns
// ErrQueueFull when the buffer has no free slot.
func (q *Queue[T]) Enqueue(task Task[T]) error {
	ctx, err := q.prepare(&task)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

// EnqueueWait pushes a task, waiting for a free slot until ctx or the queue is done.
func (q *Queue[T]) EnqueueWait(ctx context.Context, task Task[T]) error {
	qctx, err := q.prepare(&task)
	if err != nil {
		return err
	}
	select {
	case <-qctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, qctx.Err())
	case <-ctx.Done():
		return ctx.Err()
	case q.tasks <- task:
		return nil
	}
}

func (q *Queue[T]) prepare(task *Task[T]) (context.Context, error) {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil, fmt.Errorf("queue %s not started", q.name)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}
	return ctx, nil
}

func (q *Queue[T]) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			if err := q.handler(q.ctx, task); err != nil {
				q.handleFailure(task, err)
			}
			if err := Sleep(q.ctx, q.pace); err != nil {
				return
			}
		}
	}
}

func (q *Queue[T]) handleFailure(task Task[T], err error) {
	task.Attempt++
	if task.Attempt > q.maxRetries {
		q.logger.Sugar().Errorw("task exceeded retries", "queue", q.name, "task_id", task.ID, "kind", task.Kind, "error", err)
		if q.onGiveUp != nil {
			q.onGiveUp(task, err)
		}
		return
	}
	q.logger.Sugar().Warnw("task failed, retrying", "queue", q.name, "task_id", task.ID, "kind", task.Kind, "attempt", task.Attempt, "error", err)

	go func(t Task[T]) {
		if Sleep(q.ctx, q.retryDelay) != nil {
			return
		}
		if err := q.EnqueueWait(q.ctx, t); err != nil {
			q.logger.Sugar().Errorw("failed to requeue task", "queue", q.name, "task_id", t.ID, "error", err)
		}
	}(task)
}

// Sleep pauses for d or until ctx is done, returning ctx.Err() in the latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
