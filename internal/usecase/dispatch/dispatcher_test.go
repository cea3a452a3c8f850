package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/mailer"
)

// scriptedDeliverer fails a fixed number of times per recipient before
// succeeding. A negative count means the recipient always fails.
type scriptedDeliverer struct {
	mu        sync.Mutex
	failures  map[string]int
	permanent map[string]bool
	attempts  map[string]int
}

func newScriptedDeliverer() *scriptedDeliverer {
	return &scriptedDeliverer{
		failures:  make(map[string]int),
		permanent: make(map[string]bool),
		attempts:  make(map[string]int),
	}
}

func (s *scriptedDeliverer) Deliver(_ context.Context, recipient, _ string, _ entity.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[recipient]++
	remaining := s.failures[recipient]

	if remaining == 0 {
		return nil
	}
	if s.permanent[recipient] {
		return &mailer.PermanentError{Message: "mailbox does not exist"}
	}
	if remaining > 0 {
		s.failures[recipient] = remaining - 1
	}
	return &mailer.TransientError{Message: "relay timeout"}
}

func (s *scriptedDeliverer) attemptCount(recipient string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[recipient]
}

// newTestDispatcher replaces the sleep with a recorder so tests run
// instantly and can assert the backoff schedule.
func newTestDispatcher(d mailer.Deliverer) (*Dispatcher, *[]time.Duration) {
	dispatcher := New(d, 4)

	var mu sync.Mutex
	delays := &[]time.Duration{}
	dispatcher.sleep = func(_ context.Context, delay time.Duration) error {
		mu.Lock()
		*delays = append(*delays, delay)
		mu.Unlock()
		return nil
	}
	return dispatcher, delays
}

func testDigest() entity.Digest {
	return entity.Digest{
		CycleDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Source:    "# Digest",
		HTML:      "<html></html>",
	}
}

func TestDispatch_AllSucceed(t *testing.T) {
	deliverer := newScriptedDeliverer()
	dispatcher, _ := newTestDispatcher(deliverer)

	report := dispatcher.Dispatch(context.Background(),
		[]string{"a@example.com", "b@example.com"}, "subject", testDigest())

	assert.Equal(t, 2, report.Delivered())
	assert.Equal(t, 0, report.Failed())
	for _, o := range report.Outcomes {
		assert.True(t, o.Delivered)
		assert.Equal(t, 1, o.Attempts)
		assert.NoError(t, o.Err)
	}
}

func TestDispatch_FailureIsolatedPerRecipient(t *testing.T) {
	deliverer := newScriptedDeliverer()
	deliverer.failures["down@example.com"] = -1 // always fails

	dispatcher, _ := newTestDispatcher(deliverer)

	report := dispatcher.Dispatch(context.Background(),
		[]string{"down@example.com", "up@example.com"}, "subject", testDigest())

	require.Len(t, report.Outcomes, 2)
	down := report.Outcomes[0]
	up := report.Outcomes[1]

	assert.False(t, down.Delivered)
	assert.Error(t, down.Err)
	assert.Equal(t, 3, down.Attempts, "transient failures exhaust all attempts")

	assert.True(t, up.Delivered)
	assert.Equal(t, 1, up.Attempts)
}

func TestDispatch_RetriesWithExponentialBackoff(t *testing.T) {
	deliverer := newScriptedDeliverer()
	deliverer.failures["flaky@example.com"] = 2 // fail, fail, succeed

	dispatcher, delays := newTestDispatcher(deliverer)

	report := dispatcher.Dispatch(context.Background(),
		[]string{"flaky@example.com"}, "subject", testDigest())

	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	assert.True(t, outcome.Delivered)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, deliverer.attemptCount("flaky@example.com"))

	require.Len(t, *delays, 2)
	assert.Equal(t, 1*time.Second, (*delays)[0])
	assert.Equal(t, 2*time.Second, (*delays)[1])
	assert.LessOrEqual(t, (*delays)[0], (*delays)[1], "delays never shrink")
}

func TestDispatch_PermanentErrorNotRetried(t *testing.T) {
	deliverer := newScriptedDeliverer()
	deliverer.failures["gone@example.com"] = -1
	deliverer.permanent["gone@example.com"] = true

	dispatcher, delays := newTestDispatcher(deliverer)

	report := dispatcher.Dispatch(context.Background(),
		[]string{"gone@example.com"}, "subject", testDigest())

	outcome := report.Outcomes[0]
	assert.False(t, outcome.Delivered)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Empty(t, *delays, "no backoff after a permanent error")
}

func TestDispatch_ContextCancellationStopsRetries(t *testing.T) {
	deliverer := newScriptedDeliverer()
	deliverer.failures["slow@example.com"] = -1

	dispatcher := New(deliverer, 2)
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	report := dispatcher.Dispatch(ctx, []string{"slow@example.com"}, "subject", testDigest())

	outcome := report.Outcomes[0]
	assert.False(t, outcome.Delivered)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, 1, deliverer.attemptCount("slow@example.com"))
}

func TestDispatch_ConcurrencyCapped(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	blocking := delivererFunc(func(ctx context.Context, _, _ string, _ entity.Digest) error {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})

	dispatcher := New(blocking, 2)
	recipients := []string{
		"a@example.com", "b@example.com", "c@example.com",
		"d@example.com", "e@example.com", "f@example.com",
	}

	report := dispatcher.Dispatch(context.Background(), recipients, "subject", testDigest())

	assert.Equal(t, len(recipients), report.Delivered())
	assert.LessOrEqual(t, peak, 2, "worker pool must cap concurrent deliveries")
}

type delivererFunc func(ctx context.Context, recipient, subject string, digest entity.Digest) error

func (f delivererFunc) Deliver(ctx context.Context, recipient, subject string, digest entity.Digest) error {
	return f(ctx, recipient, subject, digest)
}
