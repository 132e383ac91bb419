package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mvilist/internal/config"
	"github.com/jask/mvilist/internal/database"
	"github.com/jask/mvilist/internal/database/repository"
	"github.com/jask/mvilist/internal/listview"
	"github.com/jask/mvilist/internal/logging"
	"github.com/jask/mvilist/internal/poller"
	"github.com/jask/mvilist/internal/prefs"
	"github.com/jask/mvilist/internal/service"
	"github.com/jask/mvilist/internal/todo"
	"github.com/jask/mvilist/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, closeLog, err := logging.OpenFile(cfg.Log.File, level)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	added, err := database.SeedTodos(ctx, db, cfg.Seed.Count)
	if err != nil {
		log.Fatalf("seed todos: %v", err)
	}
	logger.Info("database ready", "path", cfg.Database.Path, "seeded", added)

	fetcher := &service.TodoFetcher{
		Todos:          repository.NewTodoRepo(db),
		StampFetchTime: cfg.Poll.StampFetch,
	}
	filterPath, err := prefs.FilterPath()
	if err != nil {
		logger.Warn("filter prefs unavailable", "err", err)
	}
	var filter todo.FilterState
	if filterPath != "" {
		if filter, err = prefs.LoadFilter(filterPath); err != nil {
			logger.Warn("load filter prefs", "path", filterPath, "err", err)
		}
	}
	vm := listview.New(fetcher.Fetch, listview.WithLogger(logger), listview.WithFilter(filter))
	defer func() {
		if err := vm.Close(); err != nil {
			logger.Warn("close view model", "err", err)
		}
	}()

	refresh := func() { vm.Refresh() }
	p := poller.New(refresh, cfg.Poll.Interval, poller.WithLogger(logger.With("component", "poller")))
	defer p.Pause()

	if cfg.Poll.WatchDatabase {
		w, err := poller.NewWatcher(cfg.Database.Path, refresh, poller.WithWatcherLogger(logger.With("component", "watcher")))
		if err != nil {
			logger.Warn("database watcher disabled", "err", err)
		} else if err := w.Start(ctx); err != nil {
			logger.Warn("database watcher disabled", "err", err)
		} else {
			defer w.Stop()
		}
	}

	app := tui.New(ctx, vm, tui.Services{
		Poller:      p,
		Maintenance: &service.MaintenanceService{DB: db},
		SeedCount:   cfg.Seed.Count,
		Keys:        cfg.Keys,
	})
	prog := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}

	if filterPath != "" {
		if err := prefs.SaveFilter(filterPath, vm.TakeSnapshot().Filter); err != nil {
			logger.Warn("save filter prefs", "path", filterPath, "err", err)
		}
	}
}
