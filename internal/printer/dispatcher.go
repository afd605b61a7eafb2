package printer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/paperjet/internal/log"
	"github.com/mattjoyce/paperjet/internal/receipt"
)

// ErrQueueFull rejects a job when the FIFO is at capacity. The webhook
// still answers 200; the loss is logged, not retried upstream.
var ErrQueueFull = errors.New("print queue full")

// Result describes one completed dispatch, successful or not.
type Result struct {
	JobID    string
	Provider string
	TicketID string
	Job      *receipt.Job
	Err      error // nil on success, *TransportError otherwise

	QueuedAt    time.Time
	CompletedAt time.Time
}

type submission struct {
	id       string
	job      *receipt.Job
	queuedAt time.Time
	done     chan Result
}

// Options tunes the dispatcher. Zero values fall back to safe defaults.
type Options struct {
	// QueueDepth bounds how many jobs may wait on the device.
	QueueDepth int
	// JobTimeout bounds one job's hold on the device. On expiry the job
	// is abandoned, reported as a transport failure, and the next job
	// proceeds.
	JobTimeout time.Duration
	// OnComplete, when set, observes every result after the device is
	// released. Used to journal outcomes and feed the preview stream.
	OnComplete func(Result)
}

// Dispatcher owns the printer. One worker drains a bounded FIFO, so two
// jobs can never interleave their writes and near-simultaneous tickets
// print in submission order.
type Dispatcher struct {
	transport  Transport
	timeout    time.Duration
	onComplete func(Result)
	jobs       chan *submission
	logger     *slog.Logger
}

// New creates a Dispatcher. Call Start before Dispatch.
func New(transport Transport, opts Options) *Dispatcher {
	depth := opts.QueueDepth
	if depth <= 0 {
		depth = 16
	}
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		transport:  transport,
		timeout:    timeout,
		onComplete: opts.OnComplete,
		jobs:       make(chan *submission, depth),
		logger:     log.WithComponent("printer"),
	}
}

// Start runs the worker loop until ctx is cancelled. Blocking; run it in
// its own goroutine.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("print dispatcher started", "device", d.transport.Device(), "timeout", d.timeout)
	defer d.logger.Info("print dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub := <-d.jobs:
			res := d.execute(ctx, sub)
			sub.done <- res
			if d.onComplete != nil {
				d.onComplete(res)
			}
		}
	}
}

// Dispatch queues a job and waits for its outcome. Returns the assigned job
// id together with nil on success or a *TransportError (or ErrQueueFull /
// ctx error) on failure.
func (d *Dispatcher) Dispatch(ctx context.Context, job *receipt.Job) (string, error) {
	sub := &submission{
		id:       uuid.NewString(),
		job:      job,
		queuedAt: time.Now().UTC(),
		done:     make(chan Result, 1),
	}

	select {
	case d.jobs <- sub:
	default:
		d.logger.Warn("print queue full, dropping job", "ticket", job.TicketID)
		return sub.id, ErrQueueFull
	}

	select {
	case res := <-sub.done:
		return sub.id, res.Err
	case <-ctx.Done():
		// The worker still owns the job; its result reaches OnComplete.
		return sub.id, ctx.Err()
	}
}

// execute holds the device for exactly one job. A transport that outlives
// the per-job timeout is abandoned so the queue keeps moving.
func (d *Dispatcher) execute(ctx context.Context, sub *submission) Result {
	jobLogger := log.WithJob(sub.id).With("ticket", sub.job.TicketID, "device", d.transport.Device())
	jobLogger.Debug("printing job")

	jctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.transport.Print(jctx, sub.job)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-jctx.Done():
		jobLogger.Warn("print job abandoned", "timeout", d.timeout)
		err = jctx.Err()
	}

	res := Result{
		JobID:       sub.id,
		Provider:    sub.job.Provider,
		TicketID:    sub.job.TicketID,
		Job:         sub.job,
		QueuedAt:    sub.queuedAt,
		CompletedAt: time.Now().UTC(),
	}
	if err != nil {
		res.Err = &TransportError{Device: d.transport.Device(), Err: err}
		jobLogger.Error("print job failed", "error", err)
	} else {
		jobLogger.Info("print job completed")
	}
	return res
}
