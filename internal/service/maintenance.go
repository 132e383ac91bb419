package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/mvilist/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset deletes every todo. The schema stays so the app keeps running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM todos"); err != nil {
			return fmt.Errorf("reset todos: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// Reseed resets the store and seeds todos 1..n again.
func (s *MaintenanceService) Reseed(ctx context.Context, n int) (int, error) {
	if err := s.Reset(ctx); err != nil {
		return 0, err
	}
	return database.SeedTodos(ctx, s.DB, n)
}
