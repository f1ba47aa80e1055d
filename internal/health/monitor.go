// Package health runs the supervised warehouse connectivity check.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the typed health-check result surfaced on the status endpoint.
type State string

const (
	StateOk       State = "ok"
	StateDegraded State = "degraded" // at least one recent failure
	StateDown     State = "down"     // three or more consecutive failures
)

// downThreshold is the consecutive-failure count at which Degraded becomes Down.
const downThreshold = 3

// Pinger verifies the warehouse endpoint is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls the warehouse on a fixed interval and holds the latest typed
// state. It never blocks or prompts; consumers read the state when they want it.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	state    State
	failures int
	checked  time.Time
}

// NewMonitor creates a monitor that checks every interval once Run is started.
func NewMonitor(pinger Pinger, interval time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		log:      log,
		state:    StateOk,
	}
}

// Run performs an immediate check and then polls until ctx is cancelled.
// Intended to run in its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// Status returns the current state and when it was last checked.
func (m *Monitor) Status() (State, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.checked
}

func (m *Monitor) check(ctx context.Context) {
	err := m.pinger.Ping(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked = time.Now()

	if err == nil {
		if m.state != StateOk {
			m.log.Info().Msg("health: warehouse connection recovered")
		}
		m.state = StateOk
		m.failures = 0
		return
	}

	m.failures++
	if m.failures >= downThreshold {
		m.state = StateDown
	} else {
		m.state = StateDegraded
	}

	m.log.Warn().Err(err).
		Int("consecutive_failures", m.failures).
		Str("state", string(m.state)).
		Msg("health: warehouse check failed")
}
