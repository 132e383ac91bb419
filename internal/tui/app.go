package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mvilist/internal/cell"
	"github.com/jask/mvilist/internal/listview"
	"github.com/jask/mvilist/internal/poller"
	"github.com/jask/mvilist/internal/service"
	"github.com/jask/mvilist/internal/todo"
)

// App renders the todo list and turns key presses into view model intents.
type App struct {
	ctx      context.Context
	vm       *listview.ViewModel
	services Services
	keys     *KeyRegistry

	sub    *cell.Subscription[[]todo.DisplayItem]
	items  []todo.DisplayItem
	cursor int

	search textinput.Model
	focus  focusArea
	modal  modalState
	status string
	height int
}

// Services are the optional collaborators behind lifecycle and maintenance keys.
type Services struct {
	Poller      *poller.Poller
	Maintenance *service.MaintenanceService
	SeedCount   int

	// Keys overrides default key bindings, by action name.
	Keys map[string][]string
}

type focusArea string

const (
	focusList   focusArea = "list"
	focusSearch focusArea = "search"
)

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmReseed modalState = "confirmReseed"
)

type (
	listMsg   []todo.DisplayItem
	statusMsg string
	errMsg    struct{ error }
)

type reseedDoneMsg struct{ Added int }

func New(ctx context.Context, vm *listview.ViewModel, services Services) *App {
	ti := textinput.New()
	ti.Placeholder = "Search"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.SetValue(vm.Query.Current())

	displayable := vm.Displayable()
	return &App{
		ctx:      ctx,
		vm:       vm,
		services: services,
		keys:     NewKeyRegistry(ApplyActionKeybindings(DefaultKeyBindings(), services.Keys)),
		sub:      displayable.Subscribe(),
		items:    displayable.Current(),
		search:   ti,
		focus:    focusList,
	}
}

func (a *App) Init() tea.Cmd {
	if a.services.Poller != nil {
		a.services.Poller.Resume(a.ctx)
	}
	return a.waitList()
}

// waitList blocks until the derived list is published again.
func (a *App) waitList() tea.Cmd {
	return func() tea.Msg {
		items, err := a.sub.Next(a.ctx)
		if err != nil {
			return nil
		}
		return listMsg(items)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.height = m.Height
		a.search.Width = m.Width - 4
	case tea.FocusMsg:
		if a.services.Poller != nil {
			a.services.Poller.Resume(a.ctx)
		}
	case tea.BlurMsg:
		if a.services.Poller != nil {
			a.services.Poller.Pause()
		}
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.focus == focusSearch {
			return a.handleSearchKey(m)
		}
		return a.handleListKey(m)
	case listMsg:
		a.items = []todo.DisplayItem(m)
		if a.cursor >= len(a.items) {
			a.cursor = max(len(a.items)-1, 0)
		}
		return a, a.waitList()
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case reseedDoneMsg:
		a.status = fmt.Sprintf("reseeded %d todos", m.Added)
		a.vm.Refresh()
	}
	return a, nil
}

func (a *App) handleListKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.keys.Action(m, scopeList) {
	case actionQuit:
		if a.services.Poller != nil {
			a.services.Poller.Pause()
		}
		return a, tea.Quit
	case actionSearch:
		a.focus = focusSearch
		return a, a.search.Focus()
	case actionUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case actionDown:
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
	case actionSelect:
		if a.cursor < len(a.items) {
			a.vm.Select(a.items[a.cursor])
		}
	case actionClear:
		a.vm.ClearSelection()
	case actionEven:
		a.status = "id filter: " + a.vm.ToggleParity(todo.ParityEven).String()
	case actionOdd:
		a.status = "id filter: " + a.vm.ToggleParity(todo.ParityOdd).String()
	case actionSortAsc:
		a.status = "sort: " + a.vm.ToggleSort(todo.SortTitleAsc).String()
	case actionSortDesc:
		a.status = "sort: " + a.vm.ToggleSort(todo.SortTitleDesc).String()
	case actionRefresh:
		req := a.vm.Refresh()
		a.status = "refresh " + req.String()[:8]
	case actionReseed:
		if a.services.Maintenance != nil {
			a.modal = modalConfirmReseed
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc, tea.KeyEnter, tea.KeyTab:
		a.focus = focusList
		a.search.Blur()
		return a, nil
	}
	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	if v := a.search.Value(); v != before {
		a.vm.SetQuery(v)
	}
	return a, cmd
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.keys.Action(m, scopeModal) {
	case actionConfirm:
		a.modal = modalNone
		return a, a.reseedCmd()
	case actionCancel:
		a.modal = modalNone
	}
	return a, nil
}

func (a *App) reseedCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.Maintenance == nil {
			return errMsg{fmt.Errorf("maintenance not configured")}
		}
		added, err := a.services.Maintenance.Reseed(a.ctx, a.services.SeedCount)
		if err != nil {
			return errMsg{err}
		}
		return reseedDoneMsg{Added: added}
	}
}
