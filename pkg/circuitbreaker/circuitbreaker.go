package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker is rejecting calls outright.
var ErrOpen = errors.New("circuit breaker is open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

type Settings struct {
	Name string
	// MaxFailures is how many consecutive failures open the breaker.
	MaxFailures int
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// CircuitBreaker sheds load from a failing upstream. After MaxFailures
// consecutive errors it rejects calls for Cooldown, then lets a single
// probe through; a probe success closes it again.
type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu          sync.Mutex
	state       state
	failures    int
	lastFailure time.Time
}

func New(settings Settings) *CircuitBreaker {
	maxFailures := settings.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	cooldown := settings.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:        settings.Name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute runs fn unless the breaker is open, and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != stateOpen {
		return nil
	}
	if time.Since(cb.lastFailure) < cb.cooldown {
		return ErrOpen
	}
	cb.state = stateHalfOpen
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.state = stateClosed
		cb.failures = 0
		return
	}

	cb.failures++
	cb.lastFailure = time.Now()
	if cb.state == stateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = stateOpen
	}
}
