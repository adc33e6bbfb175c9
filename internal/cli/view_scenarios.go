package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/repository"
)

// scenariosLoadedMsg carries the saved scenario list.
type scenariosLoadedMsg struct {
	list []*domain.Scenario
	err  error
}

// scenariosView lists saved scenarios; enter loads one into the workspace.
type scenariosView struct {
	state   *SharedState
	list    []*domain.Scenario
	cursor  int
	loading bool
	err     error
}

func newScenariosView(state *SharedState) *scenariosView {
	return &scenariosView{state: state, loading: true}
}

func (v *scenariosView) ID() ViewID    { return ViewScenarios }
func (v *scenariosView) Title() string { return "Escenarios" }

func (v *scenariosView) ShortHelp() []key.Binding {
	return []key.Binding{
		binding("enter", "cargar"),
		binding("d", "eliminar"),
	}
}

func (v *scenariosView) Init() tea.Cmd {
	return v.load()
}

func (v *scenariosView) load() tea.Cmd {
	repo := v.state.App.Scenarios
	return func() tea.Msg {
		if repo == nil {
			return scenariosLoadedMsg{}
		}
		list, err := repo.List(context.Background())
		return scenariosLoadedMsg{list: list, err: err}
	}
}

func (v *scenariosView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scenariosLoadedMsg:
		v.loading = false
		v.list, v.err = msg.list, msg.err
		v.cursor = max(0, min(v.cursor, len(v.list)-1))
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.list)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor >= len(v.list) {
				return v, nil
			}
			s := v.list[v.cursor]
			v.state.WS.LoadScenario(s.Name, s.Plan)
			return v, tea.Batch(popView(), flash(formatter.StyleGreen.Render("Escenario cargado: ")+formatter.Bold(s.Name)))
		case "d":
			if v.cursor >= len(v.list) {
				return v, nil
			}
			name := v.list[v.cursor].Name
			if err := repository.DeleteScenario(context.Background(), v.state.App.UoW, name); err != nil {
				return v, flash(formatter.StyleRed.Render("Error: " + err.Error()))
			}
			return v, tea.Batch(v.load(), flash(formatter.Dim("Escenario eliminado: "+name)))
		}
	}
	return v, nil
}

func (v *scenariosView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Cargando...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}

	var b strings.Builder
	b.WriteString("\n")
	table := formatter.FormatScenarioList(v.list, time.Now())
	if len(v.list) == 0 {
		b.WriteString(table)
		return b.String()
	}
	// Mark the selected row. The first two lines are header and rule.
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	for i, line := range lines {
		marker := "  "
		if i-2 == v.cursor {
			marker = formatter.StyleGreen.Render("▸ ")
		}
		b.WriteString(marker + line + "\n")
	}
	return b.String()
}
