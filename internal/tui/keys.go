package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Key scopes.
const (
	scopeList  = "list"
	scopeModal = "modal"
)

// Actions a key can trigger.
const (
	actionQuit     = "quit"
	actionSearch   = "search"
	actionUp       = "up"
	actionDown     = "down"
	actionSelect   = "select"
	actionClear    = "clear"
	actionEven     = "filter-even"
	actionOdd      = "filter-odd"
	actionSortAsc  = "sort-asc"
	actionSortDesc = "sort-desc"
	actionRefresh  = "refresh"
	actionReseed   = "reseed"
	actionConfirm  = "confirm"
	actionCancel   = "cancel"
)

type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"q", "ctrl+c"}, Action: actionQuit, Description: "quit", Scopes: []string{scopeList}},
		{Keys: []string{"/", "tab"}, Action: actionSearch, Description: "search", Scopes: []string{scopeList}},
		{Keys: []string{"k", "up"}, Action: actionUp, Description: "up", Scopes: []string{scopeList}},
		{Keys: []string{"j", "down"}, Action: actionDown, Description: "down", Scopes: []string{scopeList}},
		{Keys: []string{"enter", " "}, Action: actionSelect, Description: "select", Scopes: []string{scopeList}},
		{Keys: []string{"esc"}, Action: actionClear, Description: "clear", Scopes: []string{scopeList}},
		{Keys: []string{"e"}, Action: actionEven, Description: "even ids", Scopes: []string{scopeList}},
		{Keys: []string{"o"}, Action: actionOdd, Description: "odd ids", Scopes: []string{scopeList}},
		{Keys: []string{"a"}, Action: actionSortAsc, Description: "title asc", Scopes: []string{scopeList}},
		{Keys: []string{"d"}, Action: actionSortDesc, Description: "title desc", Scopes: []string{scopeList}},
		{Keys: []string{"r"}, Action: actionRefresh, Description: "refresh", Scopes: []string{scopeList}},
		{Keys: []string{"R"}, Action: actionReseed, Description: "reseed", Scopes: []string{scopeList}},
		{Keys: []string{"y"}, Action: actionConfirm, Description: "yes", Scopes: []string{scopeModal}},
		{Keys: []string{"n", "esc"}, Action: actionCancel, Description: "no", Scopes: []string{scopeModal}},
	}
}

// ApplyActionKeybindings replaces the keys of every binding whose action appears in actionKeys.
func ApplyActionKeybindings(bindings []KeyBinding, actionKeys map[string][]string) []KeyBinding {
	out := make([]KeyBinding, 0, len(bindings))
	for _, b := range bindings {
		next := KeyBinding{
			Keys:        append([]string(nil), b.Keys...),
			Action:      b.Action,
			Description: b.Description,
			Scopes:      append([]string(nil), b.Scopes...),
		}
		if keys, ok := actionKeys[b.Action]; ok && len(keys) > 0 {
			next.Keys = append([]string(nil), keys...)
		}
		out = append(out, next)
	}
	return out
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

// Action returns the action bound to msg in scope, or "" when nothing matches.
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) string {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return b.Action
			}
		}
	}
	return ""
}

// KeyFor returns the first key bound to action, or "" when unbound.
func (r *KeyRegistry) KeyFor(action string) string {
	for _, b := range r.bindings {
		if b.Action == action && len(b.Keys) > 0 {
			return b.Keys[0]
		}
	}
	return ""
}

// HelpLine renders "[key] description" pairs for scope, skipping the actions in hide.
func (r *KeyRegistry) HelpLine(scope string, hide ...string) string {
	parts := make([]string, 0, len(r.bindings))
	for _, b := range r.BindingsForScope(scope) {
		if len(b.Keys) == 0 || slices.Contains(hide, b.Action) {
			continue
		}
		k := b.Keys[0]
		if k == " " {
			k = "space"
		}
		parts = append(parts, "["+k+"] "+b.Description)
	}
	return strings.Join(parts, "  ")
}

// normalizeKey trims whitespace except for a lone space, and keeps case so "r" and "R" differ.
func normalizeKey(k string) string {
	if k == " " {
		return k
	}
	return strings.TrimSpace(k)
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}
