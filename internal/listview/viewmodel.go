// Package listview is the view model of the todo list screen.
//
// Five cells feed it: the fetched records, the text query, the id parity
// filter, the sort mode and the selection. The displayable list is derived
// from a snapshot of all five and recomputed whenever any of them changes.
package listview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jask/mvilist/internal/cell"
	"github.com/jask/mvilist/internal/derive"
	"github.com/jask/mvilist/internal/logging"
	"github.com/jask/mvilist/internal/source"
	"github.com/jask/mvilist/internal/todo"
)

// ViewModel owns the inputs and the derived list.
// The rendering layer writes Query, Parity, Sort and Selection; the engine only reads them.
type ViewModel struct {
	Source    *source.Cache
	Query     *cell.Cell[string]
	Parity    *cell.Cell[todo.IDParity]
	Sort      *cell.Cell[todo.SortMode]
	Selection *cell.Cell[todo.Selection]

	log *slog.Logger
	now func() time.Time

	once        sync.Once
	displayable *cell.Cell[[]todo.DisplayItem]
	engine      *derive.Recomputer[[]todo.DisplayItem]
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithLogger sets the logger shared by the source cache and the engine.
func WithLogger(l *slog.Logger) Option {
	return func(vm *ViewModel) { vm.log = l }
}

// WithClock sets the time source used to stamp derived items.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) { vm.now = now }
}

// WithFilter sets the initial filter state.
func WithFilter(f todo.FilterState) Option {
	return func(vm *ViewModel) {
		vm.Query = cell.New(f.Query)
		vm.Parity = cell.New(f.Parity)
		vm.Sort = cell.New(f.Sort)
	}
}

// New builds a view model whose source cache is loaded by fetch.
func New(fetch source.Fetcher, opts ...Option) *ViewModel {
	vm := &ViewModel{
		Query:     cell.New(""),
		Parity:    cell.New(todo.ParityNone),
		Sort:      cell.New(todo.SortNone),
		Selection: cell.New[todo.Selection](nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.log = logging.OrDiscard(vm.log)
	vm.Source = source.New(fetch, source.WithLogger(vm.log.With("component", "source")))
	return vm
}

// Displayable returns the derived list. The engine starts on first call.
func (vm *ViewModel) Displayable() *cell.Cell[[]todo.DisplayItem] {
	vm.once.Do(vm.startEngine)
	return vm.displayable
}

// Engine returns the recomputation engine, starting it if needed.
func (vm *ViewModel) Engine() *derive.Recomputer[[]todo.DisplayItem] {
	vm.once.Do(vm.startEngine)
	return vm.engine
}

func (vm *ViewModel) startEngine() {
	vm.displayable = cell.New([]todo.DisplayItem{})
	vm.engine = derive.New(vm.displayable, vm.compute,
		derive.WithLogger(vm.log.With("component", "engine")))

	err := vm.engine.Start(context.Background(),
		vm.Source.Records().Subscribe(),
		vm.Query.Subscribe(),
		vm.Parity.Subscribe(),
		vm.Sort.Subscribe(),
		vm.Selection.Subscribe(),
	)
	if err != nil {
		vm.log.Error("start engine", "err", err)
	}
}

func (vm *ViewModel) compute(ctx context.Context) ([]todo.DisplayItem, error) {
	return pipeline(ctx, vm.TakeSnapshot(), vm.now())
}

// TakeSnapshot reads the current value of every input.
func (vm *ViewModel) TakeSnapshot() Snapshot {
	return Snapshot{
		Selection: vm.Selection.Current(),
		Filter: todo.FilterState{
			Query:  vm.Query.Current(),
			Parity: vm.Parity.Current(),
			Sort:   vm.Sort.Current(),
		},
		Records: vm.Source.Current(),
	}
}

// SetQuery replaces the text filter.
func (vm *ViewModel) SetQuery(q string) { vm.Query.Set(q) }

// ToggleParity switches to target, or back to no filter when target is already active.
func (vm *ViewModel) ToggleParity(target todo.IDParity) todo.IDParity {
	return vm.Parity.Update(func(p todo.IDParity) todo.IDParity { return p.Toggle(target) })
}

// ToggleSort switches to target, or back to source order when target is already active.
func (vm *ViewModel) ToggleSort(target todo.SortMode) todo.SortMode {
	return vm.Sort.Update(func(s todo.SortMode) todo.SortMode { return s.Toggle(target) })
}

// Select marks item as the selection.
func (vm *ViewModel) Select(item todo.DisplayItem) {
	vm.Selection.Set(&item)
}

// ClearSelection removes the selection.
func (vm *ViewModel) ClearSelection() { vm.Selection.Set(nil) }

// Refresh asks the source cache for a new fetch.
func (vm *ViewModel) Refresh() todo.FetchRequest { return vm.Source.Refresh() }

// Close stops the engine and the source cache.
func (vm *ViewModel) Close() error {
	var err error
	if vm.engine != nil {
		err = vm.engine.Close()
	}
	vm.Source.Close()
	return err
}
