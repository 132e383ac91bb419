package listview

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jask/mvilist/internal/todo"
)

// Snapshot is one consistent reading of the five inputs.
type Snapshot struct {
	Records   []todo.Record
	Filter    todo.FilterState
	Selection todo.Selection
}

// Derive computes the displayable list for s. Every item is stamped with now.
func Derive(s Snapshot, now time.Time) []todo.DisplayItem {
	out, _ := pipeline(context.Background(), s, now)
	return out
}

// pipeline runs Derive, stopping between stages once ctx is cancelled.
func pipeline(ctx context.Context, s Snapshot, now time.Time) ([]todo.DisplayItem, error) {
	kept := matchQuery(s.Records, s.Filter.Query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kept = matchParity(kept, s.Filter.Parity)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := wrap(kept, now)
	markSelected(items, s.Selection)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortItems(items, s.Filter.Sort)
	return items, nil
}

// matchQuery returns pointers into records so items share the fetched data.
func matchQuery(records []todo.Record, query string) []*todo.Record {
	out := make([]*todo.Record, 0, len(records))
	if strings.TrimSpace(query) == "" {
		for i := range records {
			out = append(out, &records[i])
		}
		return out
	}
	fold := cases.Fold()
	needle := fold.String(query)
	for i := range records {
		r := &records[i]
		if strings.Contains(fold.String(r.Title), needle) || strings.Contains(fold.String(r.Detail), needle) {
			out = append(out, r)
		}
	}
	return out
}

func matchParity(records []*todo.Record, p todo.IDParity) []*todo.Record {
	if p == todo.ParityNone {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if p.Keep(r.Number()) {
			out = append(out, r)
		}
	}
	return out
}

func wrap(records []*todo.Record, now time.Time) []todo.DisplayItem {
	items := make([]todo.DisplayItem, len(records))
	for i, r := range records {
		items[i] = todo.NewDisplayItem(r, false, now)
	}
	return items
}

func markSelected(items []todo.DisplayItem, sel todo.Selection) {
	id, ok := todo.SelectedID(sel)
	if !ok {
		return
	}
	for i := range items {
		if items[i].ID() == id {
			items[i] = items[i].WithSelected(true)
			return
		}
	}
}

func sortItems(items []todo.DisplayItem, mode todo.SortMode) {
	switch mode {
	case todo.SortTitleAsc:
		slices.SortStableFunc(items, func(a, b todo.DisplayItem) int {
			return strings.Compare(a.Record().Title, b.Record().Title)
		})
	case todo.SortTitleDesc:
		slices.SortStableFunc(items, func(a, b todo.DisplayItem) int {
			return strings.Compare(b.Record().Title, a.Record().Title)
		})
	}
}
