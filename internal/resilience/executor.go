package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config holds configuration for an Executor.
type Config struct {
	// Name identifies the dependency.
	Name string

	// MaxRetries is the number of retries after the first attempt.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the first backoff delay.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay.
	// Default: 2 seconds
	MaxInterval time.Duration

	// Breaker configures the circuit breaker.
	// If nil, DefaultBreakerConfig is used.
	Breaker *BreakerConfig

	// Registry, when set, tracks the executor for status reporting.
	Registry *Registry
}

// DefaultConfig returns the defaults for a named dependency.
func DefaultConfig(name string) Config {
	breaker := DefaultBreakerConfig(name)
	return Config{
		Name:            name,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Breaker:         &breaker,
	}
}

// Executor runs operations against one dependency with retries and a
// circuit breaker.
type Executor struct {
	name     string
	breaker  *gobreaker.CircuitBreaker[struct{}]
	config   Config
	registry *Registry
}

// NewExecutor creates an Executor and registers it when cfg.Registry is set.
func NewExecutor(cfg Config) *Executor {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	breakerCfg := DefaultBreakerConfig(cfg.Name)
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}

	e := &Executor{
		name:     cfg.Name,
		breaker:  newBreaker(breakerCfg),
		config:   cfg,
		registry: cfg.Registry,
	}
	if e.registry != nil {
		e.registry.Register(e)
	}
	return e
}

// Name returns the dependency name.
func (e *Executor) Name() string {
	return e.name
}

// Do runs op until it succeeds, returns a Permanent error, the retries are
// exhausted or ctx is done. An open breaker fails fast with ErrCircuitOpen.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.config.InitialInterval
	bo.MaxInterval = e.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, e.config.MaxRetries), ctx)

	err := backoff.Retry(func() error {
		_, err := e.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, op(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		return err
	}, policy)

	if e.registry != nil {
		if err != nil {
			e.registry.RecordFailure(e.name, err)
		} else {
			e.registry.RecordSuccess(e.name)
		}
	}
	return err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// State returns the breaker state.
func (e *Executor) State() gobreaker.State {
	return e.breaker.State()
}

// Counts returns the breaker counters.
func (e *Executor) Counts() gobreaker.Counts {
	return e.breaker.Counts()
}
