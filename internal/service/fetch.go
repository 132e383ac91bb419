package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jask/mvilist/internal/database/repository"
	"github.com/jask/mvilist/internal/todo"
)

// TodoFetcher loads the todo collection for the source cache.
type TodoFetcher struct {
	Todos *repository.TodoRepo

	// StampFetchTime reports every record as modified at fetch time,
	// emulating a backend that keeps updating its data. Rows are not written.
	StampFetchTime bool
	Clock          func() time.Time
}

// Fetch satisfies source.Fetcher.
func (f *TodoFetcher) Fetch(ctx context.Context, req todo.FetchRequest) ([]todo.Record, error) {
	if f.Todos == nil {
		return nil, fmt.Errorf("fetch %s: todo repo not configured", req)
	}
	rows, err := f.Todos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req, err)
	}
	out := make([]todo.Record, 0, len(rows))
	now := f.now()
	for _, r := range rows {
		rec := todo.Record{
			ID:             r.ID,
			Title:          r.Title,
			Detail:         r.Detail,
			LastModifiedAt: r.LastModifiedAt,
		}
		if f.StampFetchTime {
			rec.LastModifiedAt = now
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *TodoFetcher) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now().UTC()
}
