// Package prefs persists the list filter between runs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jask/mvilist/internal/todo"
)

const filterFile = "filter.json"

type savedFilter struct {
	Query  string `json:"query"`
	Parity string `json:"parity"`
	Sort   string `json:"sort"`
}

// FilterPath is where the filter is kept unless a caller picks another file.
func FilterPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mvilist", filterFile), nil
}

// SaveFilter writes f to path atomically.
func SaveFilter(path string, f todo.FilterState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(savedFilter{
		Query:  f.Query,
		Parity: f.Parity.String(),
		Sort:   f.Sort.String(),
	}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFilter reads the filter at path. A missing file yields the zero filter.
// Unknown parity or sort names fall back to no filtering and source order.
func LoadFilter(path string) (todo.FilterState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return todo.FilterState{}, nil
		}
		return todo.FilterState{}, err
	}
	var s savedFilter
	if err := json.Unmarshal(data, &s); err != nil {
		return todo.FilterState{}, err
	}
	return todo.FilterState{
		Query:  s.Query,
		Parity: parseParity(s.Parity),
		Sort:   parseSort(s.Sort),
	}, nil
}

func parseParity(s string) todo.IDParity {
	for _, p := range []todo.IDParity{todo.ParityEven, todo.ParityOdd} {
		if p.String() == s {
			return p
		}
	}
	return todo.ParityNone
}

func parseSort(s string) todo.SortMode {
	for _, m := range []todo.SortMode{todo.SortTitleAsc, todo.SortTitleDesc} {
		if m.String() == s {
			return m
		}
	}
	return todo.SortNone
}
