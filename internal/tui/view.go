package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/mvilist/internal/listview"
	"github.com/jask/mvilist/internal/todo"
)

// styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	chipStyle     = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	chipOnStyle   = chipStyle.Bold(true).BorderForeground(lipgloss.Color("63")).Foreground(lipgloss.Color("63"))
	cardStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = cardStyle.Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("63"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const timeLayout = "15:04:05"

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todos"))
	b.WriteString("\n\n")
	b.WriteString(a.search.View())
	b.WriteString("\n")
	b.WriteString(a.renderChips())
	b.WriteString("\n")
	b.WriteString(a.renderList())
	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	if a.modal == modalConfirmReseed {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Reseed database?"))
		b.WriteString(fmt.Sprintf("\nDelete every todo and seed %d fresh ones. %s", a.services.SeedCount, a.keys.HelpLine(scopeModal)))
	}
	return b.String()
}

func (a *App) chip(action, label string, on bool) string {
	label = "[" + a.keys.KeyFor(action) + "] " + label
	if on {
		return chipOnStyle.Render(label)
	}
	return chipStyle.Render(label)
}

func (a *App) renderChips() string {
	parity := a.vm.Parity.Current()
	sort := a.vm.Sort.Current()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		a.chip(actionEven, "Even ID Only", parity == todo.ParityEven), " ",
		a.chip(actionOdd, "Odd ID Only", parity == todo.ParityOdd), " ",
		a.chip(actionSortAsc, "Sort Title Ascending", sort == todo.SortTitleAsc), " ",
		a.chip(actionSortDesc, "Sort Title Descending", sort == todo.SortTitleDesc),
	)
}

// visibleRange returns the window of items that fits the terminal, keeping the cursor in view.
func (a *App) visibleRange() (int, int) {
	rows := len(a.items)
	if a.height <= 0 {
		return 0, rows
	}
	// title, search, chips (3 lines), footer and spacing
	capacity := max((a.height-10)/2, 1)
	if rows <= capacity {
		return 0, rows
	}
	start := max(a.cursor-capacity/2, 0)
	end := start + capacity
	if end > rows {
		end = rows
		start = end - capacity
	}
	return start, end
}

func (a *App) renderList() string {
	if len(a.items) == 0 {
		msg := "  no todos match"
		if s, ok := listview.Suggest(a.vm.Source.Current(), a.vm.Query.Current()); ok {
			msg += fmt.Sprintf("; did you mean %q?", s)
		}
		return mutedStyle.Render(msg)
	}
	start, end := a.visibleRange()
	var b strings.Builder
	for i := start; i < end; i++ {
		item := a.items[i]
		rec := item.Record()
		pointer := "  "
		if i == a.cursor && a.focus == focusList {
			pointer = cursorStyle.Render("> ")
		}
		style := cardStyle
		if item.Selected {
			style = selectedStyle
		}
		line := fmt.Sprintf("%-12s %s", rec.Title, rec.Detail)
		b.WriteString(pointer + style.Render(line) + "\n")
		b.WriteString("    " + mutedStyle.Render("Updated at: "+rec.LastModifiedAt.Local().Format(timeLayout)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderFooter() string {
	st := a.vm.Source.Stats()
	footer := fmt.Sprintf("%d shown · fetches %d ok / %d failed · engine %s",
		len(a.items), st.Succeeded, st.Failed, a.vm.Engine().State())
	var hide []string
	if a.services.Maintenance == nil {
		hide = append(hide, actionReseed)
	}
	help := a.keys.HelpLine(scopeList, hide...)
	out := mutedStyle.Render(footer) + "\n" + mutedStyle.Render(help)
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
