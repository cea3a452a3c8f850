// Package dispatch fans a rendered digest out to every recipient with
// per-recipient retry. One recipient's failure never affects delivery
// to the others.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/mailer"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/retry"
)

// Outcome is the terminal delivery result for one recipient.
type Outcome struct {
	Recipient string
	Delivered bool
	Attempts  int
	Err       error
}

// Report summarizes one dispatch run.
type Report struct {
	Outcomes []Outcome
}

// Delivered returns the number of recipients that received the digest.
func (r Report) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Delivered {
			n++
		}
	}
	return n
}

// Failed returns the number of recipients whose delivery was abandoned.
func (r Report) Failed() int {
	return len(r.Outcomes) - r.Delivered()
}

// Dispatcher delivers a digest to a recipient list. Deliveries run
// concurrently up to a fixed worker cap; attempts for one recipient
// are sequential with exponential backoff between them.
type Dispatcher struct {
	deliverer   mailer.Deliverer
	retryConfig retry.Config
	workers     *semaphore.Weighted

	// sleep waits between attempts; tests substitute a recording
	// implementation.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Dispatcher with the standard delivery retry profile.
func New(deliverer mailer.Deliverer, maxConcurrent int) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		deliverer:   deliverer,
		retryConfig: retry.DeliveryConfig(),
		workers:     semaphore.NewWeighted(int64(maxConcurrent)),
		sleep:       sleepContext,
	}
}

// Dispatch sends the digest to every recipient and reports each
// terminal outcome. It returns once every recipient has either been
// delivered to or exhausted its attempts. Outcomes are ordered like
// the input recipient list.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []string, subject string, digest entity.Digest) Report {
	outcomes := make([]Outcome, len(recipients))

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(idx int, to string) {
			defer wg.Done()

			if err := d.workers.Acquire(ctx, 1); err != nil {
				outcomes[idx] = Outcome{
					Recipient: to,
					Err:       fmt.Errorf("dispatch aborted: %w", err),
				}
				return
			}
			defer d.workers.Release(1)

			outcomes[idx] = d.deliverWithRetry(ctx, to, subject, digest)
		}(i, recipient)
	}
	wg.Wait()

	report := Report{Outcomes: outcomes}
	slog.Info("dispatch complete",
		slog.String("date", digest.DateKey()),
		slog.Int("recipients", len(recipients)),
		slog.Int("delivered", report.Delivered()),
		slog.Int("failed", report.Failed()))
	return report
}

// deliverWithRetry runs the sequential attempt loop for one recipient.
// Delays between attempts follow the retry profile's schedule and
// never shrink. Permanent failures stop the loop immediately.
func (d *Dispatcher) deliverWithRetry(ctx context.Context, recipient, subject string, digest entity.Digest) Outcome {
	delay := d.retryConfig.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= d.retryConfig.MaxAttempts; attempt++ {
		start := time.Now()
		err := d.deliverer.Deliver(ctx, recipient, subject, digest)
		metrics.RecordDeliveryAttempt(err == nil, time.Since(start))

		if err == nil {
			if attempt > 1 {
				slog.Info("delivery succeeded after retry",
					slog.String("recipient", recipient),
					slog.Int("attempt", attempt))
			}
			metrics.RecordDeliveryOutcome(true)
			return Outcome{Recipient: recipient, Delivered: true, Attempts: attempt}
		}

		lastErr = err

		if !mailer.IsRetryable(err) {
			slog.Error("delivery failed with permanent error",
				slog.String("recipient", recipient),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			metrics.RecordDeliveryOutcome(false)
			return Outcome{Recipient: recipient, Attempts: attempt, Err: err}
		}

		if attempt == d.retryConfig.MaxAttempts {
			break
		}

		slog.Warn("delivery attempt failed, backing off",
			slog.String("recipient", recipient),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", d.retryConfig.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		if err := d.sleep(ctx, delay); err != nil {
			metrics.RecordDeliveryOutcome(false)
			return Outcome{
				Recipient: recipient,
				Attempts:  attempt,
				Err:       fmt.Errorf("dispatch aborted: %w", err),
			}
		}
		delay = retry.NextDelay(delay, d.retryConfig)
	}

	slog.Error("delivery abandoned after exhausting attempts",
		slog.String("recipient", recipient),
		slog.Int("attempts", d.retryConfig.MaxAttempts),
		slog.Any("error", lastErr))
	metrics.RecordDeliveryOutcome(false)
	return Outcome{
		Recipient: recipient,
		Attempts:  d.retryConfig.MaxAttempts,
		Err:       fmt.Errorf("max delivery attempts (%d) exceeded: %w", d.retryConfig.MaxAttempts, lastErr),
	}
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
