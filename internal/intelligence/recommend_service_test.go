package intelligence

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/llm"
	"github.com/alexanderramin/staffplan/internal/staffing"
)

type mockLLMClient struct {
	response string
	err      error
	lastReq  llm.GenerateRequest
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "gemini-2.5-flash"}, nil
}

func (m *mockLLMClient) Available(_ context.Context) bool { return m.err == nil }

func (m *mockLLMClient) Provider() llm.Provider { return llm.ProviderGemini }

type outcomeRecorder struct {
	outcomes []Outcome
}

func (r *outcomeRecorder) OnRecommendation(_ context.Context, o Outcome, _ *domain.AIResponse) {
	r.outcomes = append(r.outcomes, o)
}

const validResponse = `{
  "operationAlert": "Backlog crítico el Viernes",
  "suggestions": [
    {
      "title": "Mover 2 Operativos",
      "fromShift": "turno1",
      "toShift": "turno2",
      "role": "operativo",
      "amount": 2,
      "suggestedTime": "Inicio del turno del Viernes",
      "reason": "Turno 2 opera solo el Viernes con 450 SKU",
      "impact": "Sube la capacidad del Viernes a 250 SKU"
    }
  ]
}`

func TestRecommend_ValidResponse(t *testing.T) {
	client := &mockLLMClient{response: validResponse}
	rec := &outcomeRecorder{}
	svc := NewRecommendationService(client, zap.NewNop(), rec)

	resp := svc.Recommend(context.Background(), domain.DefaultPlan())

	require.NotNil(t, resp)
	assert.Equal(t, "Backlog crítico el Viernes", resp.OperationAlert)
	require.Len(t, resp.Suggestions, 1)
	sg := resp.Suggestions[0]
	assert.Equal(t, domain.ShiftTurno1, sg.FromShift)
	assert.Equal(t, domain.ShiftTurno2, sg.ToShift)
	assert.Equal(t, domain.RoleOperativo, sg.Role)
	assert.Equal(t, 2, sg.Amount)
	assert.Equal(t, []Outcome{OutcomeOK}, rec.outcomes)
}

func TestRecommend_RequestCarriesPlanAndSchema(t *testing.T) {
	client := &mockLLMClient{response: `{"suggestions":[]}`}
	svc := NewRecommendationService(client, nil)

	svc.Recommend(context.Background(), domain.DefaultPlan())

	req := client.lastReq
	assert.Equal(t, llm.TaskRecommend, req.Task)
	require.NotNil(t, req.Schema)
	assert.Contains(t, req.Schema.Properties, "suggestions")
	assert.Contains(t, req.UserPrompt, "- Turno 1 (turno1): reach: 3, gruas: 1, operativo: 3, certificador: 1")
	assert.Contains(t, req.UserPrompt, "- Turno PT (turnoPT): reach: 2, gruas: 1, operativo: 3, certificador: 1")
	assert.Contains(t, req.UserPrompt, "Domingo: 14:00-22:30")
	assert.Contains(t, req.UserPrompt, "Miércoles: Libre")
	assert.Contains(t, req.UserPrompt, "- Lunes: 600 SKU")
	assert.Contains(t, req.UserPrompt, "- Sábado: 0 SKU")
	assert.Contains(t, req.UserPrompt, "Cada persona procesa 25 SKUs por turno.")
}

func TestRecommend_TransportFailureDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := &mockLLMClient{err: llm.ErrUnavailable}
	rec := &outcomeRecorder{}
	svc := NewRecommendationService(client, zap.New(core), rec)

	resp := svc.Recommend(context.Background(), domain.DefaultPlan())

	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.OperationAlert)
	assert.Equal(t, DegradedAlert, resp.OperationAlert)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Error de Conexión", resp.Suggestions[0].Title)
	assert.Equal(t, 0, resp.Suggestions[0].Amount)
	assert.True(t, IsDegraded(resp))
	assert.Equal(t, []Outcome{OutcomeDegraded}, rec.outcomes)

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "unavailable")
}

func TestRecommend_NilClientDegrades(t *testing.T) {
	svc := NewRecommendationService(nil, nil)
	resp := svc.Recommend(context.Background(), domain.DefaultPlan())
	assert.True(t, IsDegraded(resp))
}

func TestRecommend_UnparseableTextDegrades(t *testing.T) {
	svc := NewRecommendationService(&mockLLMClient{response: "lo siento, no puedo"}, nil)
	resp := svc.Recommend(context.Background(), domain.DefaultPlan())
	assert.True(t, IsDegraded(resp))
}

func TestRecommend_ShapeProblemsYieldEmpty(t *testing.T) {
	cases := map[string]string{
		"missing suggestions":    `{"operationAlert": "algo"}`,
		"suggestions not a list": `{"operationAlert": "algo", "suggestions": "mover gente"}`,
		"suggestions object":     `{"suggestions": {"title": "x"}}`,
		"suggestions null":       `{"suggestions": null}`,
		"null document":          `null`,
		"fenced missing list":    "```json\n{\"foo\": 1}\n```",
		"empty array document":   `[]`,
		"number document":        `42`,
		"string document":        `"texto"`,
		"boolean document":       `true`,
		"fenced array document":  "```json\n[1, 2]\n```",
		"wrapped in an array": `[{"suggestions": [{"title": "x", "fromShift": "turno1", "toShift": "turno2",
			"role": "reach", "amount": 1, "suggestedTime": "", "reason": "", "impact": ""}]}]`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			rec := &outcomeRecorder{}
			svc := NewRecommendationService(&mockLLMClient{response: text}, nil, rec)

			resp := svc.Recommend(context.Background(), domain.DefaultPlan())

			require.NotNil(t, resp)
			assert.Empty(t, resp.OperationAlert)
			assert.NotNil(t, resp.Suggestions)
			assert.Empty(t, resp.Suggestions)
			assert.Equal(t, []Outcome{OutcomeEmpty}, rec.outcomes)
		})
	}
}

func TestNormalizeResponse_DropsInvalidSuggestions(t *testing.T) {
	text := `{"suggestions": [
		{"title": "ok", "fromShift": "turno2", "toShift": "turnoPT", "role": "reach", "amount": 1, "suggestedTime": "", "reason": "", "impact": ""},
		{"title": "bad shift", "fromShift": "turno9", "toShift": "turno1", "role": "reach", "amount": 1},
		{"title": "bad role", "fromShift": "turno1", "toShift": "turno2", "role": "picker", "amount": 1},
		{"title": "", "fromShift": "turno1", "toShift": "turno2", "role": "reach", "amount": 1},
		"not an object",
		{"title": "fractional", "fromShift": "turno1", "toShift": "turno2", "role": "reach", "amount": 1.5, "suggestedTime": "", "reason": "", "impact": ""},
		{"title": "no amount", "fromShift": "turno1", "toShift": "turno2", "role": "reach", "suggestedTime": "", "reason": "", "impact": ""},
		{"title": "no reason", "fromShift": "turno1", "toShift": "turno2", "role": "reach", "amount": 1, "suggestedTime": "", "impact": ""},
		{"title": "labels", "fromShift": "Turno 1", "toShift": "Turno PT", "role": "Grúas", "amount": 2.0, "suggestedTime": "Ahora", "reason": "r", "impact": "i"}
	]}`

	resp, dropped, err := normalize(text)

	require.NoError(t, err)
	assert.Equal(t, 7, dropped)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "ok", resp.Suggestions[0].Title)
	assert.Equal(t, domain.ShiftTurnoPT, resp.Suggestions[1].ToShift)
	assert.Equal(t, domain.RoleGruas, resp.Suggestions[1].Role)
	assert.Equal(t, 2, resp.Suggestions[1].Amount)
}

func TestNormalizeResponse_OversizedAmountsMoveEveryoneAvailable(t *testing.T) {
	for _, amount := range []string{"1e20", "9.3e18", "100000000000000000000", "1e400"} {
		t.Run(amount, func(t *testing.T) {
			text := `{"suggestions": [{"title": "todos", "fromShift": "turno1", "toShift": "turno2",
				"role": "reach", "amount": ` + amount + `, "suggestedTime": "", "reason": "", "impact": ""}]}`

			resp, err := NormalizeResponse(text)
			require.NoError(t, err)
			require.Len(t, resp.Suggestions, 1)
			assert.Equal(t, math.MaxInt, resp.Suggestions[0].Amount)

			out, moved := staffing.Apply(domain.DefaultPlan().Staffing, resp.Suggestions[0])
			assert.Equal(t, 3, moved)
			assert.Equal(t, 0, out[domain.ShiftTurno1].Reach)
			assert.Equal(t, 6, out[domain.ShiftTurno2].Reach)
		})
	}
}

func TestNormalizeResponse_NegativeAmountsStayInert(t *testing.T) {
	text := `{"suggestions": [{"title": "menos", "fromShift": "turno1", "toShift": "turno2",
		"role": "reach", "amount": -1e20, "suggestedTime": "", "reason": "", "impact": ""}]}`

	resp, err := NormalizeResponse(text)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)

	_, moved := staffing.Apply(domain.DefaultPlan().Staffing, resp.Suggestions[0])
	assert.Equal(t, 0, moved)
}

func TestNormalizeResponse_InvalidJSON(t *testing.T) {
	_, err := NormalizeResponse(`{"suggestions": [`)
	assert.True(t, errors.Is(err, llm.ErrInvalidOutput))
}

func TestRecommendSchema_RequiresAllFields(t *testing.T) {
	s := RecommendSchema()
	items := s.Properties["suggestions"].Items
	require.NotNil(t, items)
	assert.ElementsMatch(t,
		[]string{"title", "fromShift", "toShift", "role", "amount", "suggestedTime", "reason", "impact"},
		items.Required)
	assert.Equal(t, []string{"turno1", "turno2", "turnoPT"}, items.Properties["fromShift"].Enum)
	assert.Equal(t, []string{"reach", "gruas", "operativo", "certificador"}, items.Properties["role"].Enum)
	assert.True(t, s.Properties["operationAlert"].Nullable)
}
