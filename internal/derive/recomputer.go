// Package derive recomputes one derived value whenever any of its inputs change.
//
// A Recomputer owns every goroutine it starts: one watcher per trigger, plus at
// most one live computation. A new trigger cancels the live computation and
// starts another. Only the newest computation may publish, and only if it was
// not cancelled, so the output never reflects a superseded run.
package derive

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jask/mvilist/internal/cell"
	"github.com/jask/mvilist/internal/logging"
)

var (
	ErrStarted = errors.New("derive: already started")
	ErrClosed  = errors.New("derive: closed")
)

// State is the engine state.
type State int32

const (
	Idle State = iota
	Computing
)

func (s State) String() string {
	if s == Computing {
		return "computing"
	}
	return "idle"
}

// Trigger blocks until its input changes. *cell.Subscription satisfies it.
type Trigger interface {
	Wait(ctx context.Context) error
}

// ComputeFunc produces a new value. It should return ctx.Err() promptly once
// ctx is cancelled; any error discards the result.
type ComputeFunc[T any] func(ctx context.Context) (T, error)

// Stats counts computations.
type Stats struct {
	Started   uint64
	Published uint64
	Discarded uint64
}

// Recomputer publishes compute results into out.
type Recomputer[T any] struct {
	out     *cell.Cell[T]
	compute ComputeFunc[T]
	log     *slog.Logger

	mu        sync.Mutex
	base      context.Context
	stop      context.CancelFunc
	watchers  *errgroup.Group
	started   bool
	closed    bool
	gen       uint64
	cancelRun context.CancelFunc
	state     State
	idle      chan struct{} // closed while Idle
	runs      sync.WaitGroup

	nStarted   atomic.Uint64
	nPublished atomic.Uint64
	nDiscarded atomic.Uint64
}

// Option configures a Recomputer.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the logger for cancellations and discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns an idle Recomputer. Nothing runs until Start.
func New[T any](out *cell.Cell[T], compute ComputeFunc[T], opts ...Option) *Recomputer[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	idle := make(chan struct{})
	close(idle)
	return &Recomputer[T]{
		out:     out,
		compute: compute,
		log:     logging.OrDiscard(o.log),
		idle:    idle,
	}
}

// Output returns the cell the results are published to.
func (r *Recomputer[T]) Output() *cell.Cell[T] { return r.out }

// Start watches every trigger until ctx is done or Close is called, and runs
// one computation straight away so the output reflects the inputs at start.
func (r *Recomputer[T]) Start(ctx context.Context, triggers ...Trigger) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.started {
		r.mu.Unlock()
		return ErrStarted
	}
	r.started = true
	r.base, r.stop = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(r.base)
	r.watchers = g
	for _, t := range triggers {
		t := t
		g.Go(func() error { return r.watch(gctx, t) })
	}
	r.mu.Unlock()

	r.Kick()
	return nil
}

func (r *Recomputer[T]) watch(ctx context.Context, t Trigger) error {
	for {
		if err := t.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		r.Kick()
	}
}

// Kick cancels the live computation, if any, and starts a new one.
// It is a no-op before Start and after Close.
func (r *Recomputer[T]) Kick() {
	r.mu.Lock()
	if !r.started || r.closed {
		r.mu.Unlock()
		return
	}
	if r.cancelRun != nil {
		r.cancelRun()
		r.log.Debug("recompute superseded", "generation", r.gen)
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(r.base)
	r.cancelRun = cancel
	if r.state == Idle {
		r.state = Computing
		r.idle = make(chan struct{})
	}
	r.runs.Add(1)
	r.mu.Unlock()

	r.nStarted.Add(1)
	go r.run(ctx, cancel, gen)
}

func (r *Recomputer[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer r.runs.Done()
	defer cancel()

	v, err := r.compute(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		// A newer run owns the state.
		r.nDiscarded.Add(1)
		return
	}
	r.cancelRun = nil
	r.state = Idle
	defer close(r.idle)
	if err != nil || ctx.Err() != nil {
		r.nDiscarded.Add(1)
		if err != nil && !errors.Is(err, context.Canceled) {
			r.log.Warn("recompute failed", "generation", gen, "err", err)
		}
		return
	}
	r.out.Set(v)
	r.nPublished.Add(1)
}

// State returns Idle or Computing.
func (r *Recomputer[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Settled blocks until no computation is live.
func (r *Recomputer[T]) Settled(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns computation counters.
func (r *Recomputer[T]) Stats() Stats {
	return Stats{
		Started:   r.nStarted.Load(),
		Published: r.nPublished.Load(),
		Discarded: r.nDiscarded.Load(),
	}
}

// Close stops the watchers and the live computation and waits for all of them.
func (r *Recomputer[T]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stop, g := r.stop, r.watchers
	r.mu.Unlock()

	if stop == nil {
		return nil
	}
	stop()
	err := g.Wait()
	r.runs.Wait()
	return err
}
