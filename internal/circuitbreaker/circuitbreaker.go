// Package circuitbreaker wraps sony/gobreaker with typed results and
// application error codes.
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/cryptoquery/internal/apperror"
)

// Config holds breaker settings.
type Config struct {
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval clears closed-state counts; zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
	// FailureRatio trips the breaker once MinRequests have been seen.
	FailureRatio float64
	MinRequests  uint32

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns settings suited to a slow public HTTP API.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		FailureRatio:     0.6,
		MinRequests:      10,
	}
}

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.FailureThreshold > 0 && counts.ConsecutiveFailures >= cfg.FailureThreshold {
				return true
			}
			if cfg.MinRequests == 0 || counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// Caller cancellation says nothing about the remote side.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn unless the breaker rejects the call.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return result, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithContext(c.cb.Name()), apperror.WithCause(err))
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return result, apperror.New(apperror.CodeCircuitHalfOpen,
			apperror.WithContext(c.cb.Name()), apperror.WithCause(err))
	}
	return result, err
}

// Name returns the breaker name.
func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// Counts returns the counts of the current generation.
func (c *CircuitBreaker[T]) Counts() gobreaker.Counts {
	return c.cb.Counts()
}
