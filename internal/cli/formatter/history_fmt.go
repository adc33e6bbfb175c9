package formatter

import (
	"strconv"
	"time"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// FormatHistory lists past recommendation requests, newest first.
func FormatHistory(records []*domain.RecommendationRecord, now time.Time) string {
	if len(records) == 0 {
		return Dim("Aún no se han solicitado recomendaciones.") + "\n"
	}
	headers := []string{"CUÁNDO", "ESCENARIO", "RESULTADO", "SUGERENCIAS", "ALERTA"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		scenario := r.ScenarioName
		if scenario == "" {
			scenario = Dim("--")
		}
		result := StyleGreen.Render("● ok")
		if r.Degraded {
			result = StyleRed.Render("● sin conexión")
		} else if r.SuggestionCount == 0 {
			result = StyleYellow.Render("○ vacía")
		}
		rows = append(rows, []string{
			HumanTimestampFrom(r.RequestedAt, now),
			scenario,
			result,
			strconv.Itoa(r.SuggestionCount),
			Truncate(r.Alert, 48),
		})
	}
	return RenderTable(headers, rows, 3)
}

// FormatScenarioList lists saved scenarios with their weekly figures.
func FormatScenarioList(scenarios []*domain.Scenario, now time.Time) string {
	if len(scenarios) == 0 {
		return Dim("No hay escenarios guardados.") + "\n"
	}
	headers := []string{"NOMBRE", "CARGA", "CAPACIDAD", "DÍAS SOBRE", "ACTUALIZADO"}
	rows := make([][]string, 0, len(scenarios))
	for _, s := range scenarios {
		sum := capacity.Summarize(capacity.Derive(s.Plan))
		overText := StyleGreen.Render("0")
		if sum.OverCapacityDays > 0 {
			overText = StyleRed.Render(strconv.Itoa(sum.OverCapacityDays))
		}
		rows = append(rows, []string{
			Bold(s.Name),
			strconv.Itoa(sum.TotalWorkload),
			strconv.Itoa(sum.TotalCapacity),
			overText,
			Dim(HumanTimestampFrom(s.UpdatedAt, now)),
		})
	}
	return RenderTable(headers, rows, 1, 2, 3)
}
