package notifier

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stand-lead-engine/internal/metrics"
	"stand-lead-engine/internal/utils"
)

// ErrDispatcherClosed is reported for messages dispatched after Close.
var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Workers   int
	Rate      float64 // messages per second; <= 0 disables limiting
	Burst     int
	QueueSize int
	Logger    *zap.Logger
}

type job struct {
	ctx     context.Context
	msg     Message
	index   int
	results []Result
	done    *sync.WaitGroup
}

// Dispatcher is an in-process notification queue: a buffered channel drained
// by a fixed pool of workers that share one token-bucket limiter.
type Dispatcher struct {
	notifier Notifier
	limiter  *rate.Limiter
	jobs     chan job
	logger   *zap.Logger

	mu      sync.RWMutex
	closed  bool
	workers sync.WaitGroup
}

// NewDispatcher starts the worker pool. Call Close to stop it.
func NewDispatcher(n Notifier, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	d := &Dispatcher{
		notifier: n,
		limiter:  rate.NewLimiter(limit, opts.Burst),
		jobs:     make(chan job, opts.QueueSize),
		logger:   utils.OrDefault(opts.Logger, "dispatcher"),
	}

	d.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.work()
	}

	d.logger.Info("Notification dispatcher started",
		zap.Int("workers", opts.Workers),
		zap.Float64("rate", opts.Rate),
		zap.Int("burst", opts.Burst),
	)
	return d
}

// Dispatch enqueues msgs and blocks until every one has a result. Results
// are returned in input order. Messages that cannot be enqueued because ctx
// ends or the dispatcher is closed fail without being sent.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []Message) []Result {
	results := make([]Result, len(msgs))
	var done sync.WaitGroup

	d.mu.RLock()
	for i, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}

		if d.closed {
			results[i] = Result{MessageID: msg.ID, Error: ErrDispatcherClosed.Error()}
			continue
		}

		done.Add(1)
		select {
		case d.jobs <- job{ctx: ctx, msg: msg, index: i, results: results, done: &done}:
			metrics.NotifierQueueDepth.Inc()
		case <-ctx.Done():
			results[i] = Result{MessageID: msg.ID, Error: ctx.Err().Error()}
			done.Done()
		}
	}
	d.mu.RUnlock()

	done.Wait()
	return results
}

func (d *Dispatcher) work() {
	defer d.workers.Done()

	for j := range d.jobs {
		metrics.NotifierQueueDepth.Dec()

		if err := d.limiter.Wait(j.ctx); err != nil {
			j.results[j.index] = Result{MessageID: j.msg.ID, Error: err.Error()}
			j.done.Done()
			continue
		}

		j.results[j.index] = d.notifier.Notify(j.ctx, j.msg)
		j.done.Done()
	}
}

// Close stops accepting messages, drains the queue and waits for the workers to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	d.workers.Wait()
	d.logger.Info("Notification dispatcher stopped")
}
