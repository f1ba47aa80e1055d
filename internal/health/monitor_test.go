package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type scriptedPinger struct {
	results []error
	calls   atomic.Int32
}

func (p *scriptedPinger) Ping(_ context.Context) error {
	n := p.calls.Add(1)
	return p.results[int(n-1)%len(p.results)]
}

func TestMonitorStartsOk(t *testing.T) {
	m := NewMonitor(&scriptedPinger{results: []error{nil}}, time.Minute, zerolog.Nop())

	state, checked := m.Status()
	assert.Equal(t, StateOk, state)
	assert.True(t, checked.IsZero())
}

func TestMonitorDegradesThenGoesDown(t *testing.T) {
	failing := errors.New("connection refused")
	m := NewMonitor(&scriptedPinger{results: []error{failing}}, time.Minute, zerolog.Nop())
	ctx := context.Background()

	m.check(ctx)
	state, checked := m.Status()
	assert.Equal(t, StateDegraded, state)
	assert.False(t, checked.IsZero())

	m.check(ctx)
	state, _ = m.Status()
	assert.Equal(t, StateDegraded, state)

	// Third consecutive failure crosses the down threshold.
	m.check(ctx)
	state, _ = m.Status()
	assert.Equal(t, StateDown, state)
}

func TestMonitorRecovers(t *testing.T) {
	failing := errors.New("connection refused")
	pinger := &scriptedPinger{results: []error{failing, failing, failing, nil, failing}}
	m := NewMonitor(pinger, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m.check(ctx)
	}
	state, _ := m.Status()
	assert.Equal(t, StateDown, state)

	// One success resets the failure count entirely.
	m.check(ctx)
	state, _ = m.Status()
	assert.Equal(t, StateOk, state)

	m.check(ctx)
	state, _ = m.Status()
	assert.Equal(t, StateDegraded, state)
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	pinger := &scriptedPinger{results: []error{nil}}
	m := NewMonitor(pinger, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// The initial check happens before the first tick.
	assert.Eventually(t, func() bool { return pinger.calls.Load() > 0 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
