package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a circuit breaker. The values are exported as the
// circuit_breaker_state gauge.
type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	}
	return "unknown"
}

// CircuitBreaker stops calling a failing service for resetTimeout after
// failureThreshold consecutive failures, then lets one trial call through.
type CircuitBreaker struct {
	mutex            sync.Mutex
	failureCount     int
	lastFailure      time.Time
	resetTimeout     time.Duration
	failureThreshold int
	serviceName      string
	state            State
	trial            bool
	now              func() time.Time
}

func NewCircuitBreaker(serviceName string, failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	cb := &CircuitBreaker{
		serviceName:      serviceName,
		failureThreshold: max(failureThreshold, 1),
		resetTimeout:     resetTimeout,
		state:            Closed,
		now:              time.Now,
	}
	metrics.CircuitBreakerState.WithLabelValues(serviceName).Set(float64(Closed))
	return cb
}

// Execute runs fn unless the circuit is open. While half-open only one
// trial call runs at a time; the others fail fast.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mutex.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.lastFailure) <= cb.resetTimeout {
			cb.mutex.Unlock()
			return ErrCircuitOpen
		}
		cb.setState(HalfOpen)
		logger.Log.Info("Circuit half-open, allowing test request",
			zap.String("service", cb.serviceName))
	}
	if cb.state == HalfOpen {
		if cb.trial {
			cb.mutex.Unlock()
			return ErrCircuitOpen
		}
		cb.trial = true
	}
	cb.mutex.Unlock()

	err := fn()

	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	wasTrial := cb.state == HalfOpen
	cb.trial = false

	if err != nil {
		cb.failureCount++
		cb.lastFailure = cb.now()
		if wasTrial || cb.failureCount >= cb.failureThreshold {
			cb.setState(Open)
			logger.Log.Warn("Circuit opened due to failures",
				zap.String("service", cb.serviceName),
				zap.Int("failures", cb.failureCount),
				zap.Time("until", cb.lastFailure.Add(cb.resetTimeout)),
				zap.Error(err))
		}
		return err
	}

	cb.failureCount = 0
	if wasTrial {
		cb.setState(Closed)
		logger.Log.Info("Circuit closed after successful test",
			zap.String("service", cb.serviceName))
	}
	return nil
}

func (cb *CircuitBreaker) setState(to State) {
	cb.state = to
	metrics.CircuitBreakerState.WithLabelValues(cb.serviceName).Set(float64(to))
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}
