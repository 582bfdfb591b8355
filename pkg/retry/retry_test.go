package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igdigest/pkg/errors"
	"igdigest/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeBackendTransient, "service unavailable")
		}
		return nil
	}, testConfig(5))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeBackendTransient, "service unavailable")
	}, testConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	// the wrapped last error survives for the caller
	assert.Contains(t, err.Error(), "service unavailable")
	assert.True(t, errs.IsType(err, errs.ErrorTypeBackendTransient))
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	fatal := errs.New(errs.ErrorTypeBackendFatal, "video processing failed")
	err := Do(func() error {
		calls++
		return fatal
	}, testConfig(3))

	assert.Equal(t, 1, calls)
	assert.Equal(t, fatal, err)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return "done", nil
	}, testConfig(3))

	assert.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 2, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig(0)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Hour}

	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			return errs.New(errs.ErrorTypeNetwork, "still down")
		}, cfg)
	}()

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retry cancelled")
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeNetwork, "timeout")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeBackendTransient, "503")))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeScrape, "actor failed")))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(fmt.Errorf("unclassified")))
}

func TestExponentialBackoff(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, eb.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, eb.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, eb.NextDelay(3))
	// capped at MaxDelay
	assert.Equal(t, time.Second, eb.NextDelay(10))
}

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 5 * time.Second}
	assert.Equal(t, time.Duration(0), cb.NextDelay(0))
	assert.Equal(t, 5*time.Second, cb.NextDelay(1))
	assert.Equal(t, 5*time.Second, cb.NextDelay(7))
}

func TestWait(t *testing.T) {
	t.Run("zero delay returns immediately", func(t *testing.T) {
		assert.NoError(t, Wait(context.Background(), 0))
	})

	t.Run("cancelled context interrupts wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Wait(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
