package intelligence

import "github.com/alexanderramin/staffplan/internal/domain"

// DegradedAlert is the operation alert shown when the model could not be reached.
const DegradedAlert = "Error al contactar al servicio de IA."

// DegradedResponse is returned whenever a recommendation request fails. Its
// single placeholder suggestion moves nothing, so applying it is harmless.
func DegradedResponse() *domain.AIResponse {
	return &domain.AIResponse{
		OperationAlert: DegradedAlert,
		Suggestions: []domain.OptimizationSuggestion{{
			Title:         "Error de Conexión",
			FromShift:     domain.ShiftTurno1,
			ToShift:       domain.ShiftTurno1,
			Role:          domain.RoleOperativo,
			Amount:        0,
			SuggestedTime: "Ahora",
			Reason:        "No se pudo obtener una respuesta del motor de IA. Revisa los registros para más detalles o verifica la API Key.",
			Impact:        "Las recomendaciones no están disponibles en este momento.",
		}},
	}
}

// IsDegraded reports whether resp is the connection-failure placeholder.
func IsDegraded(resp *domain.AIResponse) bool {
	return resp != nil && resp.OperationAlert == DegradedAlert &&
		len(resp.Suggestions) == 1 && resp.Suggestions[0].Amount == 0 &&
		resp.Suggestions[0].FromShift == resp.Suggestions[0].ToShift
}
