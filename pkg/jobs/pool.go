// Package jobs runs background tasks on a bounded goroutine pool with retries.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotRunning is returned by Submit before Start or after Stop.
var ErrNotRunning = errors.New("pool not running")

// Task carries a typed payload through the pool.
type Task[T any] struct {
	ID      string
	Payload T
	Attempt int
	Queued  time.Time
}

// Handler processes one task.
type Handler[T any] func(context.Context, Task[T]) error

// GiveUpFunc observes a task that failed more than MaxRetries times.
type GiveUpFunc[T any] func(Task[T], error)

// Options sizes a pool. MaxRetries of zero gives up on the first failure.
// The n-th retry waits n*Backoff.
type Options[T any] struct {
	Workers    int
	Buffer     int
	MaxRetries int
	Backoff    time.Duration
	OnGiveUp   GiveUpFunc[T]
	Logger     *zap.Logger
}

// Pool dispatches tasks to a fixed number of workers.
type Pool[T any] struct {
	name   string
	handle Handler[T]
	opts   Options[T]
	logger *zap.Logger
	tasks  chan Task[T]

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewPool builds a pool; call Start before Submit.
func NewPool[T any](name string, handle Handler[T], opts Options[T]) *Pool[T] {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = opts.Workers * 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool[T]{
		name:   name,
		handle: handle,
		opts:   opts,
		logger: logger.With(zap.String("pool", name)),
		tasks:  make(chan Task[T], opts.Buffer),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool[T]) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	p.logger.Info("pool started", zap.Int("workers", p.opts.Workers))
}

// Stop cancels in-flight work and waits for the workers to exit.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Info("pool stopped")
}

// Submit queues a task, blocking while the buffer is full.
func (p *Pool[T]) Submit(task Task[T]) error {
	p.mu.Lock()
	ctx, running := p.ctx, p.running
	p.mu.Unlock()
	if !running {
		return fmt.Errorf("%s: %w", p.name, ErrNotRunning)
	}
	if task.Queued.IsZero() {
		task.Queued = time.Now().UTC()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", p.name, ErrNotRunning)
	case p.tasks <- task:
		return nil
	}
}

// Pending reports how many tasks wait in the buffer.
func (p *Pool[T]) Pending() int {
	return len(p.tasks)
}

func (p *Pool[T]) work() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			if err := p.run(task); err != nil {
				p.retry(task, err)
			}
		}
	}
}

func (p *Pool[T]) run(task Task[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.ID, r)
		}
	}()
	return p.handle(p.ctx, task)
}

func (p *Pool[T]) retry(task Task[T], err error) {
	task.Attempt++
	if task.Attempt > p.opts.MaxRetries {
		p.logger.Error("task gave up", zap.String("task_id", task.ID), zap.Int("attempts", task.Attempt), zap.Error(err))
		if p.opts.OnGiveUp != nil {
			p.opts.OnGiveUp(task, err)
		}
		return
	}
	delay := time.Duration(task.Attempt) * p.opts.Backoff
	p.logger.Warn("task failed, retrying", zap.String("task_id", task.ID), zap.Int("attempt", task.Attempt), zap.Duration("delay", delay), zap.Error(err))

	time.AfterFunc(delay, func() {
		if err := p.Submit(task); err != nil && !errors.Is(err, ErrNotRunning) {
			p.logger.Error("requeue failed", zap.String("task_id", task.ID), zap.Error(err))
		}
	})
}
