package persistence

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// RetryConfig configures exponential backoff for writes that hit a locked database.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 50ms)
	MaxInterval         time.Duration // Maximum retry interval (default 1s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 10s)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     50 * time.Millisecond,
		MaxInterval:         time.Second,
		MaxElapsedTime:      10 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// isBusy reports whether err is SQLite refusing a write because another
// connection holds the lock.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// newBreaker returns the circuit breaker guarding writes to one database.
// Only lock contention counts against it; constraint violations and the like
// are the caller's problem, not the database's.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,                // One trial write in half-open state
		Timeout:     30 * time.Second, // Stay open for 30s before testing recovery
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("WARNING: store circuit breaker %q: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return !isBusy(err)
		},
	})
}

// withRetry runs op through cb, retrying with exponential backoff while it
// fails with a busy error. Any other error, an open breaker, or ctx
// cancellation ends the loop.
func withRetry(ctx context.Context, cb *gobreaker.CircuitBreaker, cfg RetryConfig, op func() error) error {
	operation := func() error {
		// Check context first - fail fast if cancelled
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, op()
		})
		if err == nil {
			return nil
		}

		// Circuit is open - don't retry
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if !isBusy(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		log.Printf("WARNING: database busy, retrying: %v", err)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialInterval
	policy.MaxInterval = cfg.MaxInterval
	policy.MaxElapsedTime = cfg.MaxElapsedTime
	policy.Multiplier = cfg.Multiplier
	policy.RandomizationFactor = cfg.RandomizationFactor

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
