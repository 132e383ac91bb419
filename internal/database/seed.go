package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jask/mvilist/internal/database/repository"
)

// SeedTodos ensures todos 1..n exist, titled "Title i" with detail "Detail i".
// Existing rows are left untouched, so it is safe to run on every startup.
func SeedTodos(ctx context.Context, db *sql.DB, n int) (int, error) {
	repo := repository.NewTodoRepo(db)
	added := 0
	now := Now()
	for i := 1; i <= n; i++ {
		id := strconv.Itoa(i)
		existing, err := repo.Get(ctx, id)
		if err != nil {
			return added, fmt.Errorf("seed todo %s: %w", id, err)
		}
		if existing != nil {
			continue
		}
		t := repository.Todo{
			ID:             id,
			Seq:            int64(i),
			Title:          fmt.Sprintf("Title %d", i),
			Detail:         fmt.Sprintf("Detail %d", i),
			LastModifiedAt: now.Add(time.Duration(i-n) * time.Second),
		}
		if err := repo.Upsert(ctx, t); err != nil {
			return added, fmt.Errorf("seed todo %s: %w", id, err)
		}
		added++
	}
	return added, nil
}
