package listview

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/mvilist/internal/todo"
)

func numberedRecords(n int) []todo.Record {
	out := make([]todo.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, todo.Record{
			ID:     fmt.Sprint(i),
			Title:  fmt.Sprintf("Title %d", i),
			Detail: fmt.Sprintf("Detail %d", i),
		})
	}
	return out
}

func staticFetch(recs []todo.Record) func(context.Context, todo.FetchRequest) ([]todo.Record, error) {
	return func(context.Context, todo.FetchRequest) ([]todo.Record, error) { return recs, nil }
}

func newTestViewModel(t *testing.T, opts ...Option) *ViewModel {
	t.Helper()
	vm := New(staticFetch(twoRecords()), opts...)
	t.Cleanup(func() { require.NoError(t, vm.Close()) })
	return vm
}

// waitRows waits until the derived list equals want.
func waitRows(t *testing.T, vm *ViewModel, want []row) {
	t.Helper()
	require.Eventually(t, func() bool {
		got := rows(vm.Displayable().Current())
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}, 2*time.Second, time.Millisecond, "want %v, have %v", want, rows(vm.Displayable().Current()))
}

func TestDisplayableIsLazy(t *testing.T) {
	t.Parallel()

	vm := newTestViewModel(t)
	require.Nil(t, vm.engine)

	d := vm.Displayable()
	require.Same(t, d, vm.Displayable())
	require.NotNil(t, vm.engine)
	require.Same(t, vm.Engine(), vm.engine)
}

func TestViewModelDerivesOnEveryInput(t *testing.T) {
	t.Parallel()

	vm := newTestViewModel(t)
	vm.Displayable()
	waitRows(t, vm, []row{})

	vm.Refresh()
	waitRows(t, vm, []row{{ID: "1"}, {ID: "2"}})

	vm.ToggleParity(todo.ParityEven)
	waitRows(t, vm, []row{{ID: "2"}})

	vm.ToggleParity(todo.ParityEven)
	vm.SetQuery("title 1")
	waitRows(t, vm, []row{{ID: "1"}})

	vm.SetQuery("")
	vm.ToggleSort(todo.SortTitleDesc)
	waitRows(t, vm, []row{{ID: "2"}, {ID: "1"}})

	items := vm.Displayable().Current()
	vm.Select(items[0])
	waitRows(t, vm, []row{{ID: "2", Selected: true}, {ID: "1"}})

	vm.ClearSelection()
	waitRows(t, vm, []row{{ID: "2"}, {ID: "1"}})
}

func TestSelectionSurvivesRefresh(t *testing.T) {
	t.Parallel()

	var gen atomic.Int32
	vm := New(func(context.Context, todo.FetchRequest) ([]todo.Record, error) {
		g := gen.Add(1)
		recs := numberedRecords(3)
		for i := range recs {
			recs[i].Detail = fmt.Sprintf("generation %d", g)
		}
		return recs, nil
	})
	t.Cleanup(func() { require.NoError(t, vm.Close()) })

	vm.Refresh()
	waitRows(t, vm, []row{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	vm.Select(vm.Displayable().Current()[2])
	waitRows(t, vm, []row{{ID: "1"}, {ID: "2"}, {ID: "3", Selected: true}})

	// A new fetch yields new records; selection is matched by id.
	vm.Refresh()
	require.Eventually(t, func() bool {
		cur := vm.Displayable().Current()
		return len(cur) == 3 && cur[2].Record().Detail == "generation 2" && cur[2].Selected
	}, 2*time.Second, time.Millisecond)
}

func TestFetchFailureKeepsList(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	vm := New(func(context.Context, todo.FetchRequest) ([]todo.Record, error) {
		if calls.Add(1) > 1 {
			return nil, errors.New("offline")
		}
		return twoRecords(), nil
	})
	t.Cleanup(func() { require.NoError(t, vm.Close()) })

	vm.Refresh()
	waitRows(t, vm, []row{{ID: "1"}, {ID: "2"}})
	version := vm.Displayable().Version()

	vm.Refresh()
	vm.Source.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, vm.Engine().Settled(ctx))
	require.Equal(t, version, vm.Displayable().Version())
	require.Equal(t, []row{{ID: "1"}, {ID: "2"}}, rows(vm.Displayable().Current()))
}

func TestBurstOfInputChangesSettlesOnLatest(t *testing.T) {
	t.Parallel()

	vm := New(staticFetch(numberedRecords(100)))
	t.Cleanup(func() { require.NoError(t, vm.Close()) })
	vm.Refresh()
	vm.Source.Wait()
	require.Eventually(t, func() bool { return len(vm.Displayable().Current()) == 100 }, 2*time.Second, time.Millisecond)

	for i := 0; i < 26; i++ {
		vm.SetQuery(fmt.Sprintf("title %d", i))
		vm.ToggleParity(todo.ParityOdd)
		vm.ToggleSort(todo.SortTitleAsc)
		vm.Select(todo.NewDisplayItem(&todo.Record{ID: fmt.Sprint(i)}, false, time.Time{}))
	}
	// Final inputs: query "title 25", parity none (toggled an even number of times),
	// sort none, selection id 25.
	want := Derive(vm.TakeSnapshot(), time.Now())
	require.Equal(t, "title 25", vm.Query.Current())
	require.Equal(t, todo.ParityNone, vm.Parity.Current())
	require.Equal(t, todo.SortNone, vm.Sort.Current())

	waitRows(t, vm, rows(want))
	require.Equal(t, []row{{ID: "25", Selected: true}}, rows(want))

	st := vm.Engine().Stats()
	require.LessOrEqual(t, st.Published, st.Started)
}

func TestWithFilterAndClock(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	vm := newTestViewModel(t,
		WithFilter(todo.FilterState{Parity: todo.ParityOdd, Sort: todo.SortTitleDesc}),
		WithClock(func() time.Time { return stamp }),
	)
	vm.Refresh()
	waitRows(t, vm, []row{{ID: "1"}})
	require.Equal(t, stamp, vm.Displayable().Current()[0].LastModifiedAt)

	snap := vm.TakeSnapshot()
	require.Equal(t, todo.ParityOdd, snap.Filter.Parity)
	require.Equal(t, todo.SortTitleDesc, snap.Filter.Sort)
	require.Nil(t, snap.Selection)
}
