package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
)

// suggestionsView lists the pending suggestions and lets the operator
// apply or dismiss them one at a time.
type suggestionsView struct {
	state  *SharedState
	cursor int
}

func newSuggestionsView(state *SharedState) *suggestionsView {
	return &suggestionsView{state: state}
}

func (v *suggestionsView) ID() ViewID    { return ViewSuggestions }
func (v *suggestionsView) Title() string { return "Sugerencias" }

func (v *suggestionsView) ShortHelp() []key.Binding {
	return []key.Binding{
		binding("enter a", "aplicar"),
		binding("x d", "descartar"),
		binding("g", "volver a pedir"),
	}
}

func (v *suggestionsView) Init() tea.Cmd {
	return nil
}

func (v *suggestionsView) count() int {
	p := v.state.WS.Snapshot().Pending
	if p == nil {
		return 0
	}
	return len(p.Suggestions)
}

func (v *suggestionsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recommendationsMsg:
		v.cursor = 0
		return v, nil

	case tea.KeyMsg:
		ws := v.state.WS
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < v.count()-1 {
				v.cursor++
			}
		case "enter", "a":
			if v.count() == 0 {
				return v, nil
			}
			sg := ws.Snapshot().Pending.Suggestions[v.cursor]
			_, moved, err := ws.ApplySuggestion(v.cursor)
			if err != nil {
				return v, flash(formatter.StyleRed.Render("Error: " + err.Error()))
			}
			v.clamp()
			return v, flash(formatter.FormatMoveResult(sg.Role, sg.FromShift, sg.ToShift, sg.Amount, moved))
		case "x", "d":
			if v.count() == 0 {
				return v, nil
			}
			if _, err := ws.DismissSuggestion(v.cursor); err != nil {
				return v, flash(formatter.StyleRed.Render("Error: " + err.Error()))
			}
			v.clamp()
			return v, flash(formatter.Dim("Sugerencia descartada."))
		case "g":
			if ws.Snapshot().Requesting {
				return v, flash(formatter.Dim("Ya hay una consulta en curso."))
			}
			return v, requestRecommendationsCmd(ws)
		}
	}
	return v, nil
}

func (v *suggestionsView) clamp() {
	v.cursor = max(0, min(v.cursor, v.count()-1))
}

func (v *suggestionsView) View() string {
	snap := v.state.WS.Snapshot()
	var b strings.Builder
	b.WriteString("\n")
	if snap.Requesting {
		b.WriteString(formatter.Dim("Consultando al servicio de IA...") + "\n\n")
	}
	b.WriteString(formatter.FormatSuggestions(snap.Pending, v.cursor))
	b.WriteString("\n" + formatter.FormatSummary(snap.Summary()))
	return b.String()
}
