package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/mvilist/internal/database"
	"github.com/jask/mvilist/internal/database/repository"
	"github.com/jask/mvilist/internal/todo"
)

func seededDB(t *testing.T, n int) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))
	t.Log("migrations applied")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	added, err := database.SeedTodos(ctx, db, n)
	require.NoError(t, err)
	require.Equal(t, n, added)
	return db
}

func TestTodoFetcherFetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := seededDB(t, 5)
	stamp := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	f := &TodoFetcher{
		Todos:          repository.NewTodoRepo(db),
		StampFetchTime: true,
		Clock:          func() time.Time { return stamp },
	}

	recs, err := f.Fetch(ctx, todo.NewFetchRequest())
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i, r := range recs {
		require.Equal(t, i+1, r.Number())
		require.True(t, stamp.Equal(r.LastModifiedAt))
	}
	require.Equal(t, "Title 3", recs[2].Title)
	require.Equal(t, "Detail 3", recs[2].Detail)
}

func TestTodoFetcherWithoutStamp(t *testing.T) {
	t.Parallel()

	db := seededDB(t, 2)
	f := &TodoFetcher{Todos: repository.NewTodoRepo(db)}
	first, err := f.Fetch(context.Background(), todo.NewFetchRequest())
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), todo.NewFetchRequest())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestTodoFetcherErrors(t *testing.T) {
	t.Parallel()

	_, err := (&TodoFetcher{}).Fetch(context.Background(), todo.NewFetchRequest())
	require.Error(t, err)

	db := seededDB(t, 1)
	require.NoError(t, db.Close())
	_, err = (&TodoFetcher{Todos: repository.NewTodoRepo(db)}).Fetch(context.Background(), todo.NewFetchRequest())
	require.Error(t, err)
}

func TestMaintenanceReseed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := seededDB(t, 3)
	repo := repository.NewTodoRepo(db)
	require.NoError(t, repo.Delete(ctx, "2"))

	svc := &MaintenanceService{DB: db}
	added, err := svc.Reseed(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 4, added)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	require.Error(t, (&MaintenanceService{}).Reset(ctx))
}
