package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MVILIST_CONFIG", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "mvilist", "mvilist.db"), cfg.Database.Path)
	require.Equal(t, 5*time.Second, cfg.Poll.Interval)
	require.True(t, cfg.Poll.WatchDatabase)
	require.True(t, cfg.Poll.StampFetch)
	require.Equal(t, 100, cfg.Seed.Count)
	require.Equal(t, "info", cfg.Log.Level)
	require.Empty(t, cfg.Log.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/tmp/todos.db"

[poll]
interval = "250ms"
watch_database = false

[seed]
count = 7

[keys]
sort-asc = ["s", "S"]
`), 0o600))
	t.Setenv("MVILIST_CONFIG", path)
	t.Setenv("MVILIST_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/todos.db", cfg.Database.Path)
	require.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	require.False(t, cfg.Poll.WatchDatabase)
	require.Equal(t, 7, cfg.Seed.Count)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, []string{"s", "S"}, cfg.Keys["sort-asc"])
}

func TestLoadRejectsBadInterval(t *testing.T) {
	isolate(t)
	t.Setenv("MVILIST_POLL_INTERVAL", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := Config{Database: DatabaseConfig{Path: "x.db"}, Poll: PollConfig{Interval: time.Second}}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Seed.Count = -1
	require.Error(t, bad.Validate())

	bad = ok
	bad.Database.Path = " "
	require.Error(t, bad.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("MVILIST_CONFIG", path)

	want := Config{
		Database: DatabaseConfig{Path: "/data/todos.db", Migrations: "migrations"},
		Poll:     PollConfig{Interval: 3 * time.Second, WatchDatabase: true},
		Seed:     SeedConfig{Count: 12},
		Log:      LogConfig{Level: "warn", File: "/tmp/mvilist.log"},
	}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
