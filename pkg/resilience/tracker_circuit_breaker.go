// Package resilience provides fault tolerance patterns for external service calls.
package resilience

import (
	"errors"
	"time"

	"tracker_server/pkg/logger"
	"tracker_server/pkg/metrics"

	"github.com/sony/gobreaker"
)

// Errors returned while the breaker rejects calls.
var (
	ErrCircuitOpen    = gobreaker.ErrOpenState
	ErrTooManyRequest = gobreaker.ErrTooManyRequests
)

// Config holds breaker thresholds.
type Config struct {
	Name                string
	MaxHalfOpenRequests uint32        // Requests allowed while half-open
	Interval            time.Duration // Closed-state counter reset
	Timeout             time.Duration // Open duration before half-open
	ConsecutiveFailures uint32        // Trip after more than this many failures in a row
	MinRequests         uint32        // Ratio trip needs at least this many requests
	FailureRatio        float64
}

// DefaultConfig returns the thresholds used for every upstream.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxHalfOpenRequests: 3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		MinRequests:         10,
		FailureRatio:        0.6,
	}
}

// Breaker wraps gobreaker with client-error passthrough.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker and publishes its state as a gauge.
func NewBreaker(cfg Config) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxHalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[CircuitBreaker] %s: state changed from %s to %s", name, from.String(), to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn under breaker protection. Errors wrapped with ClientError
// are returned unchanged but do not count as failures.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	var ce *clientError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

// State returns the current state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// IsOpen reports whether calls currently fail fast.
func (b *Breaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// clientError marks a failure caused by the request, not the upstream.
type clientError struct {
	err error
}

func (e *clientError) Error() string { return e.err.Error() }
func (e *clientError) Unwrap() error { return e.err }

// ClientError marks err as a caller-side failure (4xx) that must not trip the breaker.
func ClientError(err error) error {
	if err == nil {
		return nil
	}
	return &clientError{err: err}
}

func isClientError(err error) bool {
	var ce *clientError
	return errors.As(err, &ce)
}
