package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_ExecuteSuccess(t *testing.T) {
	cb := New(DefaultConfig("test"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ExecutePropagatesError(t *testing.T) {
	cb := New(DefaultConfig("test"))
	wantErr := errors.New("collaborator down")

	_, err := cb.Execute(func() (interface{}, error) {
		return nil, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
}

func TestCircuitBreaker_TripsAfterFailureThreshold(t *testing.T) {
	cfg := Config{
		Name:             "trippy",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      4,
	}
	cb := New(cfg)

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, errors.New("boom")
		})
	}

	assert.True(t, cb.IsOpen())

	_, err := cb.Execute(func() (interface{}, error) {
		t.Fatal("open breaker must not invoke the function")
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	cfg := DefaultConfig("calm")
	cfg.MinRequests = 10
	cb := New(cfg)

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, errors.New("boom")
		})
	}

	assert.False(t, cb.IsOpen())
}

func TestProfileConfigs(t *testing.T) {
	assert.Equal(t, "claude", AIProviderConfig("claude").Name)
	assert.Equal(t, "news-fetch", NewsFetchConfig().Name)
	assert.Equal(t, "smtp-delivery", DeliveryConfig().Name)
}
