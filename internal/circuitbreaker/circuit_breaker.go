// Package circuitbreaker guards calls to remote services (the vector
// index) with a closed / open / half-open state machine, so a failing
// endpoint fails fast instead of piling up timeouts.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker's current disposition toward new requests.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen               = errors.New("circuit breaker is open")
	ErrTooManyConcurrentRequests = errors.New("too many concurrent requests in half-open state")
)

// Config tunes the breaker's thresholds.
type Config struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit.
	FailureThreshold int
	// SuccessThreshold is the consecutive-success count in half-open
	// state that closes it again.
	SuccessThreshold int
	// Timeout is how long the circuit stays open before probing via
	// half-open.
	Timeout time.Duration
	// MaxConcurrentRequests bounds in-flight probes while half-open.
	MaxConcurrentRequests int
}

// DefaultConfig returns the thresholds used when the caller passes nil.
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold:      5,
		SuccessThreshold:      2,
		Timeout:               30 * time.Second,
		MaxConcurrentRequests: 1,
	}
}

// CircuitBreaker tracks request outcomes and gates new requests by
// state.
type CircuitBreaker struct {
	config *Config

	mu                   sync.Mutex
	state                State
	lastFailure          time.Time
	consecutiveFailures  int
	consecutiveSuccesses int
	halfOpenInFlight     int

	totalRequests   int64
	totalFailures   int64
	totalSuccesses  int64
	totalRejections int64
}

// New creates a breaker in the closed state.
func New(config *Config) *CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// Execute runs fn if the breaker admits the request, recording the
// outcome. When the circuit is open it returns ErrCircuitOpen without
// calling fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.totalRequests++
		return nil

	case StateOpen:
		if time.Since(cb.lastFailure) >= cb.config.Timeout {
			cb.transition(StateHalfOpen)
			cb.halfOpenInFlight++
			cb.totalRequests++
			return nil
		}
		cb.totalRejections++
		return ErrCircuitOpen

	case StateHalfOpen:
		if cb.halfOpenInFlight >= cb.config.MaxConcurrentRequests {
			cb.totalRejections++
			return ErrTooManyConcurrentRequests
		}
		cb.halfOpenInFlight++
		cb.totalRequests++
		return nil
	}
	return ErrCircuitOpen
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.halfOpenInFlight > 0 {
		cb.halfOpenInFlight--
	}

	if err != nil {
		cb.totalFailures++
		cb.lastFailure = time.Now()
		cb.consecutiveSuccesses = 0
		cb.consecutiveFailures++

		switch cb.state {
		case StateClosed:
			if cb.consecutiveFailures >= cb.config.FailureThreshold {
				cb.transition(StateOpen)
			}
		case StateHalfOpen:
			cb.transition(StateOpen)
		}
		return
	}

	cb.totalSuccesses++
	cb.consecutiveFailures = 0
	if cb.state == StateHalfOpen {
		cb.consecutiveSuccesses++
		if cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
			cb.transition(StateClosed)
		}
	}
}

// transition switches state and resets the per-state counters. Caller
// holds the mutex.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}
	cb.state = next
	cb.consecutiveSuccesses = 0
	if next == StateClosed {
		cb.consecutiveFailures = 0
	}
	if next == StateHalfOpen {
		cb.halfOpenInFlight = 0
	}
}

// GetState reports the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats is a snapshot of the breaker's counters.
type Stats struct {
	State               State
	TotalRequests       int64
	TotalFailures       int64
	TotalSuccesses      int64
	TotalRejections     int64
	FailureRate         float64
	LastFailureTime     time.Time
	ConsecutiveFailures int
}

// GetStats snapshots the breaker's counters.
func (cb *CircuitBreaker) GetStats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var failureRate float64
	if cb.totalRequests > 0 {
		failureRate = float64(cb.totalFailures) / float64(cb.totalRequests)
	}
	return Stats{
		State:               cb.state,
		TotalRequests:       cb.totalRequests,
		TotalFailures:       cb.totalFailures,
		TotalSuccesses:      cb.totalSuccesses,
		TotalRejections:     cb.totalRejections,
		FailureRate:         failureRate,
		LastFailureTime:     cb.lastFailure,
		ConsecutiveFailures: cb.consecutiveFailures,
	}
}

// Reset forces the breaker back to closed, clearing the consecutive
// failure/success counts, the half-open probe count, and the last
// failure time; used by operators after a known-fixed outage. The
// lifetime totals reported by GetStats are kept.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	cb.halfOpenInFlight = 0
	cb.lastFailure = time.Time{}
}
