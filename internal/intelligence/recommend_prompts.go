package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/llm"
)

// recommendSystemPrompt frames the model as a warehouse supervisor and
// describes the JSON it must return.
const recommendSystemPrompt = `Eres un experto en logística y supervisor de operaciones de almacén. Analiza los datos operativos que recibes y genera recomendaciones de optimización en formato JSON estructurado.

Devuelve un objeto JSON con:

1. operationAlert (opcional): si detectas un problema crítico que afecta a toda la operación (por ejemplo un backlog masivo o un cuello de botella inminente), escribe un mensaje de urgencia breve y claro. Si no hay alerta crítica, deja el campo nulo.

2. suggestions: lista de movimientos de personal que equilibren la carga de trabajo con la capacidad. Mueve personal desde turnos con baja carga hacia turnos con alta carga y prioriza los movimientos de mayor impacto. Cada sugerencia tiene:
   - title: título claro y accionable. Ej: "Mover 1 Operativo".
   - fromShift / toShift: turno de origen y destino ('turno1', 'turno2', 'turnoPT').
   - role: rol a mover ('reach', 'gruas', 'operativo', 'certificador').
   - amount: cantidad de personas a mover (entero).
   - suggestedTime: cuándo hacer el movimiento, de forma específica. Ej: "Al inicio del turno del Lunes".
   - reason: qué problema resuelve el movimiento.
   - impact: qué beneficio se espera.

Las recomendaciones deben ser concretas y aplicables directamente por un supervisor.`

// BuildRecommendPrompt serializes the full plan: staffing per shift and
// role, schedule per shift and day, workload per day and throughput.
func BuildRecommendPrompt(p domain.Plan) string {
	var b strings.Builder

	b.WriteString("DATOS OPERATIVOS:\n\n1. Dotación de Personal por Turno:\n")
	b.WriteString(formatStaffing(p.Staffing))

	b.WriteString("\n2. Horario de Turnos Semanal:\n")
	b.WriteString(formatSchedule(p.Schedule))

	b.WriteString("\n3. Carga de Trabajo Diaria (SKUs):\n")
	b.WriteString(formatWorkload(p.Workload))

	b.WriteString("\n4. Capacidad Operativa:\n")
	fmt.Fprintf(&b, "- Cada persona procesa %d SKUs por turno.\n", p.SKUPerPerson)
	return b.String()
}

func formatStaffing(s domain.Staffing) string {
	var b strings.Builder
	for _, sh := range domain.Shifts {
		st := s[sh]
		parts := make([]string, 0, len(domain.Roles))
		for _, r := range domain.Roles {
			parts = append(parts, fmt.Sprintf("%s: %d", r, st.Count(r)))
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", sh.Label(), sh, strings.Join(parts, ", "))
	}
	return b.String()
}

func formatSchedule(s domain.ShiftSchedule) string {
	var b strings.Builder
	for _, sh := range domain.Shifts {
		parts := make([]string, 0, len(domain.Week))
		for _, d := range domain.Week {
			entry := s.Entry(sh, d)
			if entry == "" {
				entry = "(sin dato)"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", d.Label(), entry))
		}
		fmt.Fprintf(&b, "- %s: %s\n", sh.Label(), strings.Join(parts, ", "))
	}
	return b.String()
}

func formatWorkload(w domain.DailyWorkload) string {
	var b strings.Builder
	for _, d := range domain.Week {
		fmt.Fprintf(&b, "- %s: %d SKU\n", d.Label(), w[d])
	}
	return b.String()
}

func shiftEnum() []string {
	out := make([]string, len(domain.Shifts))
	for i, s := range domain.Shifts {
		out[i] = string(s)
	}
	return out
}

func roleEnum() []string {
	out := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		out[i] = string(r)
	}
	return out
}

// RecommendSchema declares the response shape requested from the model.
func RecommendSchema() *llm.Schema {
	str := func(desc string) *llm.Schema { return &llm.Schema{Type: llm.TypeString, Description: desc} }
	fields := []string{"title", "fromShift", "toShift", "role", "amount", "suggestedTime", "reason", "impact"}

	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"operationAlert": {
				Type:        llm.TypeString,
				Description: "Una alerta operativa crítica si existe. De lo contrario, omitir.",
				Nullable:    true,
			},
			"suggestions": {
				Type:        llm.TypeArray,
				Description: "Una lista de sugerencias de optimización.",
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"title":         str("Título de la acción. Ej: Mover 1 Operativo."),
						"fromShift":     {Type: llm.TypeString, Enum: shiftEnum(), Description: "Turno de origen."},
						"toShift":       {Type: llm.TypeString, Enum: shiftEnum(), Description: "Turno de destino."},
						"role":          {Type: llm.TypeString, Enum: roleEnum(), Description: "Rol del personal."},
						"amount":        {Type: llm.TypeInteger, Description: "Cantidad de personas a mover."},
						"suggestedTime": str("Momento sugerido para la acción."),
						"reason":        str("Justificación del movimiento."),
						"impact":        str("Impacto esperado de la acción."),
					},
					PropertyOrder: fields,
					Required:      fields,
				},
			},
		},
		PropertyOrder: []string{"operationAlert", "suggestions"},
	}
}
