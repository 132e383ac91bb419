package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Todo represents a todos row.
type Todo struct {
	ID             string
	Seq            int64
	Title          string
	Detail         string
	LastModifiedAt time.Time
}

// TodoRepo handles todos.
type TodoRepo struct {
	db *sql.DB
}

func NewTodoRepo(db *sql.DB) *TodoRepo { return &TodoRepo{db: db} }

const todoColumns = "id, seq, title, detail, last_modified_at"

func (r *TodoRepo) Upsert(ctx context.Context, t Todo) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO todos(id, seq, title, detail, last_modified_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 seq=excluded.seq,
	 title=excluded.title,
	 detail=excluded.detail,
	 last_modified_at=excluded.last_modified_at;
	`, t.ID, t.Seq, t.Title, t.Detail, t.LastModifiedAt.UTC())
	return err
}

// List returns every todo in id order.
func (r *TodoRepo) List(ctx context.Context) ([]Todo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+todoColumns+" FROM todos ORDER BY seq, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns nil when no row matches.
func (r *TodoRepo) Get(ctx context.Context, id string) (*Todo, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id)
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TodoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	return err
}

func (r *TodoRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n)
	return n, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(row scanner) (Todo, error) {
	var t Todo
	if err := row.Scan(&t.ID, &t.Seq, &t.Title, &t.Detail, &t.LastModifiedAt); err != nil {
		return Todo{}, err
	}
	return t, nil
}
