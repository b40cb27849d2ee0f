package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 8
)

// BatchDispatcher sends a batch concurrently and waits for every item to
// settle. Items still running when the batch deadline expires are reported
// as failed with context.DeadlineExceeded. Nothing is retried.
type BatchDispatcher struct {
	sender      Sender
	timeout     time.Duration
	concurrency int
	logger      logging.Logger
}

// NewBatchDispatcher builds a dispatcher; non-positive timeout or concurrency
// fall back to the defaults.
func NewBatchDispatcher(s Sender, timeout time.Duration, concurrency int, l logging.Logger) *BatchDispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &BatchDispatcher{
		sender:      s,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      l.With("module", "notify"),
	}
}

func (d *BatchDispatcher) SendBatch(ctx context.Context, msgs []Message) []Outcome {
	outcomes := make([]Outcome, len(msgs))
	if len(msgs) == 0 {
		return outcomes
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.logger.Info(ctx, "sending notifications", "count", len(msgs))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, m := range msgs {
		g.Go(func() error {
			err := d.send(ctx, m)
			outcomes[i] = Outcome{To: m.To, Err: err}
			if err != nil {
				d.logger.Error(ctx, "notification failed", "to", m.To, "error", err)
			} else {
				d.logger.Info(ctx, "notification sent", "to", m.To)
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed := Failed(outcomes); len(failed) > 0 {
		d.logger.Warn(ctx, "batch settled with failures", "count", len(msgs), "failed", len(failed))
	}
	return outcomes
}

// send runs the sender in its own goroutine so a sender that ignores ctx
// cannot hold the batch past its deadline.
func (d *BatchDispatcher) send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- d.sender.Send(ctx, m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
