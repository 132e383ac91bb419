// Package poller triggers source refreshes: periodically while the screen is
// visible, and whenever the backing database file changes.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jask/mvilist/internal/logging"
)

// Poller calls refresh immediately on Resume and then every interval until Pause.
type Poller struct {
	refresh  func()
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the poller logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// New returns a paused poller.
func New(refresh func(), interval time.Duration, opts ...Option) *Poller {
	p := &Poller{refresh: refresh, interval: interval}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.OrDiscard(p.log)
	return p
}

// Resume starts polling, replacing any loop already running.
func (p *Poller) Resume(ctx context.Context) {
	p.Pause()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	run := uuid.New()

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.log.Debug("polling resumed", "run", run, "interval", p.interval)
	go p.loop(ctx, done, run)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}, run uuid.UUID) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh()
	for {
		select {
		case <-ctx.Done():
			p.log.Debug("polling stopped", "run", run)
			return
		case <-ticker.C:
			p.refresh()
		}
	}
}

// Pause stops polling and waits for the loop to exit.
func (p *Poller) Pause() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
