package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/domain"
)

// FormatSuggestions renders the operation alert and the numbered
// suggestion list. selected < 0 highlights nothing.
func FormatSuggestions(resp *domain.AIResponse, selected int) string {
	if resp == nil {
		return Dim("Sin recomendaciones. Pulsa g para solicitarlas.") + "\n"
	}
	var b strings.Builder
	if resp.OperationAlert != "" {
		b.WriteString(StyleRed.Render("▲ "+resp.OperationAlert) + "\n\n")
	}
	if len(resp.Suggestions) == 0 {
		b.WriteString(Dim("No hay sugerencias para este plan.") + "\n")
		return b.String()
	}
	for i, sg := range resp.Suggestions {
		marker := "  "
		title := Bold(sg.Title)
		if i == selected {
			marker = StylePurple.Render("› ")
			title = StylePurple.Bold(true).Render(sg.Title)
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, i+1, title)
		fmt.Fprintf(&b, "     %s\n", FormatMove(sg))
		if sg.SuggestedTime != "" {
			fmt.Fprintf(&b, "     %s %s\n", Dim("Cuándo:"), sg.SuggestedTime)
		}
		if sg.Reason != "" {
			fmt.Fprintf(&b, "     %s %s\n", Dim("Motivo:"), sg.Reason)
		}
		if sg.Impact != "" {
			fmt.Fprintf(&b, "     %s %s\n", Dim("Impacto:"), StyleGreen.Render(sg.Impact))
		}
		if i < len(resp.Suggestions)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatMove describes a suggestion's move in one line.
func FormatMove(sg domain.OptimizationSuggestion) string {
	return fmt.Sprintf("%s %s: %s → %s",
		StyleYellow.Render(fmt.Sprintf("%d×", sg.Amount)),
		sg.Role.Label(),
		sg.FromShift.Label(),
		sg.ToShift.Label())
}

// FormatMoveResult reports how many people a move actually transferred.
func FormatMoveResult(role domain.Role, from, to domain.ShiftName, requested, moved int) string {
	switch {
	case moved == 0:
		return StyleYellow.Render("Sin cambios: ") + Dim(fmt.Sprintf("no hay %s disponibles en %s para mover.", role.Label(), from.Label()))
	case moved < requested:
		return StyleGreen.Render(fmt.Sprintf("Movidos %d de %d", moved, requested)) +
			Dim(fmt.Sprintf(" %s de %s a %s.", role.Label(), from.Label(), to.Label()))
	default:
		return StyleGreen.Render(fmt.Sprintf("Movidos %d", moved)) +
			Dim(fmt.Sprintf(" %s de %s a %s.", role.Label(), from.Label(), to.Label()))
	}
}
