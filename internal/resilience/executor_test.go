package resilience_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwayline/subwayline/internal/resilience"
)

func fastConfig(name string) resilience.Config {
	cfg := resilience.DefaultConfig(name)
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 5 * time.Millisecond
	return cfg
}

func TestExecutor_Success(t *testing.T) {
	exec := resilience.NewExecutor(fastConfig("ok"))

	var calls atomic.Int32
	err := exec.Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, gobreaker.StateClosed, exec.State())
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	cfg := fastConfig("retry")
	cfg.Breaker.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	exec := resilience.NewExecutor(cfg)

	var calls atomic.Int32
	err := exec.Do(context.Background(), func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecutor_GivesUpAfterMaxRetries(t *testing.T) {
	cfg := fastConfig("exhaust")
	cfg.MaxRetries = 2
	cfg.Breaker.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	exec := resilience.NewExecutor(cfg)

	var calls atomic.Int32
	err := exec.Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return errors.New("unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecutor_PermanentErrorStopsRetries(t *testing.T) {
	exec := resilience.NewExecutor(fastConfig("permanent"))
	bad := errors.New("bad payload")

	var calls atomic.Int32
	err := exec.Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return resilience.Permanent(bad)
	})

	assert.ErrorIs(t, err, bad)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecutor_OpenCircuitFailsFast(t *testing.T) {
	cfg := fastConfig("trip")
	cfg.MaxRetries = 1
	cfg.Breaker.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 2
	}
	exec := resilience.NewExecutor(cfg)

	failing := func(context.Context) error { return errors.New("down") }
	_ = exec.Do(context.Background(), failing)
	require.Equal(t, gobreaker.StateOpen, exec.State())

	var calls atomic.Int32
	err := exec.Do(context.Background(), func(context.Context) error {
		calls.Add(1)
		return nil
	})

	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(0), calls.Load())
}

func TestExecutor_RespectsContext(t *testing.T) {
	cfg := fastConfig("ctx")
	cfg.MaxRetries = 100
	cfg.InitialInterval = 50 * time.Millisecond
	cfg.Breaker.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	exec := resilience.NewExecutor(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := exec.Do(ctx, func(context.Context) error { return errors.New("down") })
	require.Error(t, err)
}

func TestRegistry_TracksExecutors(t *testing.T) {
	registry := resilience.NewRegistry()

	okCfg := fastConfig("b-publisher")
	okCfg.Registry = registry
	okExec := resilience.NewExecutor(okCfg)

	badCfg := fastConfig("a-broker")
	badCfg.MaxRetries = 1
	badCfg.Registry = registry
	badCfg.Breaker.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	badExec := resilience.NewExecutor(badCfg)

	require.NoError(t, okExec.Do(context.Background(), func(context.Context) error { return nil }))
	require.Error(t, badExec.Do(context.Background(), func(context.Context) error { return errors.New("refused") }))

	all := registry.All()
	require.Len(t, all, 2)

	assert.Equal(t, "a-broker", all[0].Name)
	assert.NotNil(t, all[0].LastFailureAt)
	assert.Equal(t, "refused", all[0].LastError)
	assert.True(t, all[0].IsHealthy())

	assert.Equal(t, "b-publisher", all[1].Name)
	assert.NotNil(t, all[1].LastSuccessAt)
	assert.Nil(t, all[1].LastFailureAt)
	assert.False(t, all[1].IsDegraded())
}
