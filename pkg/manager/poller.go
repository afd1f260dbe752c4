package manager

import (
	"context"
	"sync"
	"time"

	"github.com/kasuboski/medialink/pkg/logger"
	"go.uber.org/zap"
)

const defaultPollInterval = time.Minute

// TickFunc runs one reconciliation pass
type TickFunc func(ctx context.Context) error

// tickState is idle when running is nil, otherwise running is closed once the
// in-flight tick returns.
type tickState struct {
	running chan struct{}
}

func (s tickState) idle() bool {
	return s.running == nil
}

// Poller drives ticks on a timer and never lets two of them overlap
type Poller struct {
	tick     TickFunc
	interval func() time.Duration
	metrics  *Metrics

	mu      sync.Mutex
	state   tickState
	stopped bool
}

// NewPoller creates a poller. interval is read again before every wait so
// configuration changes apply from the next tick.
func NewPoller(tick TickFunc, interval func() time.Duration, metrics *Metrics) *Poller {
	return &Poller{
		tick:     tick,
		interval: interval,
		metrics:  metrics,
	}
}

// ReconcileTicks adapts a manager into a TickFunc
func ReconcileTicks(m *MediaManager) TickFunc {
	return func(ctx context.Context) error {
		_, err := m.Reconcile(ctx)
		return err
	}
}

// PollInterval reads the interval from the manager's configuration
func PollInterval(src ConfigSource) func() time.Duration {
	return func() time.Duration {
		if d := src.Current().Manager.PollInterval; d > 0 {
			return d
		}
		return defaultPollInterval
	}
}

// Run triggers a tick immediately and then on every interval until ctx is
// done. It returns after the in-flight tick finishes.
func (p *Poller) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx)

	p.Trigger(ctx)

	timer := time.NewTimer(p.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("poller context cancelled, waiting for in-flight tick")
			p.Stop()
			return nil
		case <-timer.C:
			p.Trigger(ctx)
			timer.Reset(p.interval())
		}
	}
}

// Trigger starts a tick in the background. It returns false without starting
// one when a tick is already running or the poller is stopped.
func (p *Poller) Trigger(ctx context.Context) bool {
	log := logger.FromCtx(ctx)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return false
	}
	if !p.state.idle() {
		p.mu.Unlock()
		log.Debug("previous tick still running, skipping")
		p.metrics.tickSkipped()
		return false
	}
	done := make(chan struct{})
	p.state = tickState{running: done}
	p.mu.Unlock()

	// in-flight work finishes on shutdown
	tickCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			p.mu.Lock()
			p.state = tickState{}
			p.mu.Unlock()
			close(done)
		}()

		if err := p.tick(tickCtx); err != nil {
			log.Errorw("reconciliation tick failed", zap.Error(err))
		}
	}()

	return true
}

// Running reports whether a tick is in flight
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.state.idle()
}

// Stop prevents new ticks and waits for the in-flight tick, if any
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	running := p.state.running
	p.mu.Unlock()

	if running != nil {
		<-running
	}
}
