package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/intelligence"
	"github.com/alexanderramin/staffplan/internal/llm"
)

func TestLLMObserver(t *testing.T) {
	before := testutil.ToFloat64(LLMCalls.WithLabelValues("gemini", "gemini-2.5-flash", "TIMEOUT"))

	LLMObserver{}.OnCallComplete(llm.LLMCallEvent{
		Provider:  llm.ProviderGemini,
		Model:     "gemini-2.5-flash",
		LatencyMs: 1200,
		ErrorCode: "TIMEOUT",
	})

	after := testutil.ToFloat64(LLMCalls.WithLabelValues("gemini", "gemini-2.5-flash", "TIMEOUT"))
	assert.Equal(t, before+1, after)
}

func TestOutcomeObserver(t *testing.T) {
	okBefore := testutil.ToFloat64(Recommendations.WithLabelValues("ok"))
	sgBefore := testutil.ToFloat64(Suggestions)

	resp := &domain.AIResponse{Suggestions: make([]domain.OptimizationSuggestion, 3)}
	OutcomeObserver{}.OnRecommendation(context.Background(), intelligence.OutcomeOK, resp)
	OutcomeObserver{}.OnRecommendation(context.Background(), intelligence.OutcomeDegraded, intelligence.DegradedResponse())

	assert.Equal(t, okBefore+1, testutil.ToFloat64(Recommendations.WithLabelValues("ok")))
	assert.Equal(t, sgBefore+3, testutil.ToFloat64(Suggestions))
}

func TestObservePlan(t *testing.T) {
	ObservePlan(domain.DefaultPlan())

	assert.Equal(t, 6.0, testutil.ToFloat64(OverCapacityDays))
	assert.Equal(t, 575.0, testutil.ToFloat64(DayCapacity.WithLabelValues("Domingo")))
	assert.Equal(t, 0.0, testutil.ToFloat64(DayWorkload.WithLabelValues("Sabado")))
}

func TestRegisterDefault_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterDefault()
		RegisterDefault()
	})
}
