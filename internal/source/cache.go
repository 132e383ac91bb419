// Package source holds the latest fetched todo collection.
package source

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jask/mvilist/internal/cell"
	"github.com/jask/mvilist/internal/logging"
	"github.com/jask/mvilist/internal/todo"
)

// Fetcher loads the full todo collection. It may fail.
type Fetcher func(ctx context.Context, req todo.FetchRequest) ([]todo.Record, error)

// Stats counts fetches since the cache was created.
type Stats struct {
	Started   uint64
	Succeeded uint64
	Failed    uint64
}

// Cache publishes the result of each successful fetch into a cell.
//
// Refreshes are fire-and-forget: overlapping calls are neither merged nor
// cancelled against each other, and whichever fetch completes last decides
// the published value. A failed fetch publishes nothing.
type Cache struct {
	fetch Fetcher
	cell  *cell.Cell[[]todo.Record]
	log   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	started   atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithInitial seeds the cell before the first fetch.
func WithInitial(records []todo.Record) Option {
	return func(c *Cache) { c.cell = cell.New(records) }
}

// New creates a cache around fetch. The initial collection is empty.
func New(fetch Fetcher, opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		fetch:  fetch,
		cell:   cell.New([]todo.Record{}),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDiscard(c.log)
	return c
}

// Records returns the cell holding the latest collection.
func (c *Cache) Records() *cell.Cell[[]todo.Record] { return c.cell }

// Current returns the latest collection.
func (c *Cache) Current() []todo.Record { return c.cell.Current() }

// Refresh starts one fetch in the background and returns immediately.
func (c *Cache) Refresh() todo.FetchRequest {
	req := todo.NewFetchRequest()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("refresh after close ignored", "request", req)
		return req
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.started.Add(1)
	go c.run(req)
	return req
}

func (c *Cache) run(req todo.FetchRequest) {
	defer c.wg.Done()

	records, err := c.fetch(c.ctx, req)
	if err != nil {
		c.failed.Add(1)
		c.log.Warn("fetch failed; keeping previous collection", "request", req, "err", err)
		return
	}
	if c.ctx.Err() != nil {
		return
	}
	c.cell.Set(records)
	c.succeeded.Add(1)
	c.log.Debug("fetch published", "request", req, "records", len(records))
}

// Wait blocks until every started fetch has finished.
func (c *Cache) Wait() { c.wg.Wait() }

// Stats returns fetch counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Started:   c.started.Load(),
		Succeeded: c.succeeded.Load(),
		Failed:    c.failed.Load(),
	}
}

// Close cancels in-flight fetches and waits for them. Later refreshes are ignored.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
