package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hamrahbot/sabt/core/logger"
	"github.com/hamrahbot/sabt/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts Options
	jobs chan job
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
		stop: make(chan struct{}),
	}

	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}

	return d
}

// Enqueue schedules the provided function for asynchronous execution.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}

	j := job{ctx: ctx, action: action, endpoint: endpoint, run: run}

	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close drains the queue and stops all workers.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.stop)
		close(d.jobs)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.execute(j)
	}
}

func (d *Dispatcher) execute(j job) {
	start := time.Now()
	var err error
	for attempt := 0; ; attempt++ {
		err = j.run()
		if err == nil {
			break
		}
		if attempt >= d.opts.MaxRetries || !retryable(err) {
			break
		}
		backoff := d.opts.RetryBackoff
		var floodErr tele.FloodError
		if errors.As(err, &floodErr) && floodErr.RetryAfter > 0 {
			backoff = time.Duration(floodErr.RetryAfter) * time.Second
		}
		logger.Debug(j.ctx, "tg.sender", "job.retry",
			slog.String("action", j.action),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
			slog.String("err", err.Error()),
		)
		time.Sleep(backoff)
	}

	if err != nil {
		logger.Warn(j.ctx, "tg.sender", "job.failed",
			slog.String("status", "fail"),
			slog.String("action", j.action),
			slog.String("endpoint", j.endpoint),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	logger.Debug(j.ctx, "tg.sender", "job.done",
		slog.String("status", "ok"),
		slog.String("action", j.action),
		slog.String("endpoint", j.endpoint),
		slog.Duration("duration", logger.Took(start)),
	)
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return true
	}
	return netutil.ShouldRetry(err)
}
