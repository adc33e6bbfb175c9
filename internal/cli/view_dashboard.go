package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/workspace"
)

// panel is an editable grid on the dashboard.
type panel int

const (
	panelStaffing panel = iota
	panelSchedule
	panelWorkload
	panelCount
)

func (p panel) title() string {
	switch p {
	case panelStaffing:
		return "Dotación"
	case panelSchedule:
		return "Horario"
	default:
		return "Carga y rendimiento"
	}
}

// size returns the rows and columns of the panel's grid.
func (p panel) size() (int, int) {
	switch p {
	case panelStaffing:
		return len(domain.Shifts), len(domain.Roles)
	case panelSchedule:
		return len(domain.Shifts), len(domain.Week)
	default:
		return 1, len(domain.Week) + 1
	}
}

// dashboardView is the home screen of the TUI: the editable plan on the
// left, the derived weekly capacity and pending suggestions on the right.
type dashboardView struct {
	state *SharedState

	focus    panel
	row, col int

	spinner spinner.Model
}

func newDashboardView(state *SharedState) *dashboardView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple
	return &dashboardView{state: state, spinner: sp}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Panel" }

func (v *dashboardView) ShortHelp() []key.Binding {
	return []key.Binding{
		binding("tab", "panel"),
		binding("enter e", "editar"),
		binding("g", "sugerencias IA"),
		binding("v", "revisar"),
		binding("u", "deshacer"),
		binding("r", "rehacer"),
		binding("s", "guardar"),
		binding("o", "escenarios"),
		binding("q", "salir"),
	}
}

func (v *dashboardView) Init() tea.Cmd {
	return nil
}

// ── update ───────────────────────────────────────────────────────────────────

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ws := v.state.WS

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !ws.Snapshot().Requesting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case recommendationsMsg:
		n := len(msg.snap.Pending.Suggestions)
		text := fmt.Sprintf("%d sugerencias recibidas. Pulsa v para revisarlas.", n)
		if msg.snap.Pending.OperationAlert != "" {
			text = formatter.StyleRed.Render("▲ "+msg.snap.Pending.OperationAlert) + "  " + formatter.Dim(text)
		}
		return v, flash(text)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			v.setFocus((v.focus + 1) % panelCount)
		case "shift+tab":
			v.setFocus((v.focus + panelCount - 1) % panelCount)
		case "up", "k":
			v.moveCursor(-1, 0)
		case "down", "j":
			v.moveCursor(1, 0)
		case "left", "h":
			v.moveCursor(0, -1)
		case "right", "l":
			v.moveCursor(0, 1)
		case "enter", "e":
			return v, v.editCell()
		case "u":
			if !ws.Snapshot().CanUndo {
				return v, flash(formatter.Dim("Nada que deshacer."))
			}
			ws.Undo()
		case "r":
			if !ws.Snapshot().CanRedo {
				return v, flash(formatter.Dim("Nada que rehacer."))
			}
			ws.Redo()
		case "X":
			ws.Reset()
			return v, flash(formatter.Dim("Plan restablecido a los valores por defecto."))
		case "g":
			return v, v.requestRecommendations()
		case "v":
			if ws.Snapshot().Pending == nil {
				return v, flash(formatter.Dim("Sin recomendaciones. Pulsa g para solicitarlas."))
			}
			return v, pushView(newSuggestionsView(v.state))
		case "s":
			return v, v.saveScenario()
		case "o":
			return v, pushView(newScenariosView(v.state))
		}
	}

	return v, nil
}

func (v *dashboardView) setFocus(p panel) {
	v.focus = p
	rows, cols := p.size()
	v.row = min(v.row, rows-1)
	v.col = min(v.col, cols-1)
}

func (v *dashboardView) moveCursor(dr, dc int) {
	rows, cols := v.focus.size()
	v.row = max(0, min(rows-1, v.row+dr))
	v.col = max(0, min(cols-1, v.col+dc))
}

// requestRecommendations starts a gateway call unless one is already in
// flight, and keeps the spinner turning while it runs.
func (v *dashboardView) requestRecommendations() tea.Cmd {
	ws := v.state.WS
	if ws.Snapshot().Requesting {
		return flash(formatter.Dim("Ya hay una consulta en curso."))
	}
	return tea.Batch(requestRecommendationsCmd(ws), v.spinner.Tick)
}

func requestRecommendationsCmd(ws *workspace.Workspace) tea.Cmd {
	return func() tea.Msg {
		return recommendationsMsg{snap: ws.RequestRecommendations(context.Background())}
	}
}

// editCell opens a form for the cell under the cursor and applies the
// entered text through the workspace.
func (v *dashboardView) editCell() tea.Cmd {
	ws := v.state.WS
	plan := ws.Snapshot().Plan

	var title, desc, value string
	var apply func(text string) error

	switch v.focus {
	case panelStaffing:
		shift, role := domain.Shifts[v.row], domain.Roles[v.col]
		title = fmt.Sprintf("%s · %s", shift.Label(), role.Label())
		desc = "Número de personas. Un valor no numérico cuenta como 0."
		value = strconv.Itoa(plan.Staffing[shift].Count(role))
		apply = func(text string) error {
			_, err := ws.SetStaffCountText(shift, role, text)
			return err
		}
	case panelSchedule:
		shift, day := domain.Shifts[v.row], domain.Week[v.col]
		title = fmt.Sprintf("%s · %s", shift.Label(), day.Label())
		desc = "Horario como 22:00-07:30, o Libre / Salida para un día sin turno."
		value = plan.Schedule.Entry(shift, day)
		apply = func(text string) error {
			_, err := ws.SetScheduleEntry(shift, day, text)
			return err
		}
	default:
		if v.col == len(domain.Week) {
			title = "SKU por persona"
			desc = "SKU que procesa cada persona por turno."
			value = strconv.Itoa(plan.SKUPerPerson)
			apply = func(text string) error {
				ws.SetThroughputText(text)
				return nil
			}
			break
		}
		day := domain.Week[v.col]
		title = "Carga · " + day.Label()
		desc = "SKU esperados para el día."
		value = strconv.Itoa(plan.Workload[day])
		apply = func(text string) error {
			_, err := ws.SetWorkloadText(day, text)
			return err
		}
	}

	form := cellForm(title, desc, &value)
	return startWizardCmd(v.state, title, form, func() tea.Cmd {
		if err := apply(value); err != nil {
			return flash(formatter.StyleRed.Render("Error: " + err.Error()))
		}
		return flash(formatter.Dim(title + " actualizado."))
	})
}

// saveScenario asks for a name and stores the current plan under it.
func (v *dashboardView) saveScenario() tea.Cmd {
	app, ws := v.state.App, v.state.WS
	if app.Scenarios == nil {
		return flash(formatter.StyleRed.Render("No hay almacén de escenarios configurado."))
	}
	name := ws.Snapshot().Scenario
	form := scenarioNameForm(&name)
	return startWizardCmd(v.state, "Guardar escenario", form, func() tea.Cmd {
		s := &domain.Scenario{Name: strings.TrimSpace(name), Plan: ws.Snapshot().Plan}
		if err := app.Scenarios.Save(context.Background(), s); err != nil {
			return flash(formatter.StyleRed.Render("Error: " + err.Error()))
		}
		ws.SetScenario(s.Name)
		return flash(formatter.StyleGreen.Render("Escenario guardado: ") + formatter.Bold(s.Name))
	})
}

// ── view rendering ───────────────────────────────────────────────────────────

const dashSplitWidth = 150

func (v *dashboardView) View() string {
	snap := v.state.WS.Snapshot()

	left := v.renderPlan(snap)
	right := v.renderAnalysis(snap)

	if v.state.Width < dashSplitWidth {
		return left + "\n" + right
	}

	leftWidth := lipgloss.Width(left) + 2
	divider := lipgloss.NewStyle().
		Foreground(formatter.ColorDim).
		Render(strings.TrimSuffix(strings.Repeat("│\n", max(lipgloss.Height(left), lipgloss.Height(right))), "\n"))
	leftCol := lipgloss.NewStyle().Width(leftWidth).Render(left)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, divider, " ", right)
}

func (v *dashboardView) renderPlan(snap workspace.Snapshot) string {
	var b strings.Builder
	for p := panelStaffing; p < panelCount; p++ {
		var cursor *formatter.Cell
		if p == v.focus {
			cursor = &formatter.Cell{Row: v.row, Col: v.col}
		}
		b.WriteString("\n" + v.panelHeader(p) + "\n")
		switch p {
		case panelStaffing:
			b.WriteString(formatter.FormatStaffing(snap.Plan.Staffing, cursor))
		case panelSchedule:
			b.WriteString(formatter.FormatSchedule(snap.Plan.Schedule, cursor))
		case panelWorkload:
			b.WriteString(formatter.FormatWorkload(snap.Plan.Workload, snap.Plan.SKUPerPerson, cursor))
		}
	}
	return b.String()
}

func (v *dashboardView) panelHeader(p panel) string {
	text := strings.ToUpper(p.title())
	if p == v.focus {
		return formatter.StyleHeader.Render("▸ " + text)
	}
	return formatter.Dim("  " + text)
}

func (v *dashboardView) renderAnalysis(snap workspace.Snapshot) string {
	loads, summary := snap.Loads(), snap.Summary()

	var b strings.Builder
	b.WriteString("\n" + formatter.StyleHeader.Render("CAPACIDAD SEMANAL") + "\n")
	b.WriteString(formatter.FormatCapacity(loads, summary))
	b.WriteString("\n" + formatter.FormatWorkloadChart(loads))
	b.WriteString("\n" + formatter.StyleHeader.Render("SUGERENCIAS IA") + "\n")

	switch {
	case snap.Requesting:
		b.WriteString(v.spinner.View() + " " + formatter.Dim("Consultando al servicio de IA...") + "\n")
	case snap.Pending == nil:
		b.WriteString(formatter.Dim("Pulsa g para pedir sugerencias.") + "\n")
	default:
		if snap.Pending.OperationAlert != "" {
			b.WriteString(formatter.StyleRed.Render("▲ "+snap.Pending.OperationAlert) + "\n")
		}
		for i, sg := range snap.Pending.Suggestions {
			fmt.Fprintf(&b, "%d. %s  %s\n", i+1, formatter.Truncate(sg.Title, 40), formatter.FormatMove(sg))
		}
		if len(snap.Pending.Suggestions) == 0 {
			b.WriteString(formatter.Dim("No hay sugerencias para este plan.") + "\n")
		}
	}
	return b.String()
}
