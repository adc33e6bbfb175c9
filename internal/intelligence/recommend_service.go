package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/llm"
)

// Outcome classifies a recommendation result.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeEmpty    Outcome = "empty"
	OutcomeDegraded Outcome = "degraded"
)

// OutcomeObserver is told about every recommendation result.
type OutcomeObserver interface {
	OnRecommendation(ctx context.Context, outcome Outcome, resp *domain.AIResponse)
}

// RecommendationService asks the model for staffing moves. It never
// returns an error: every failure is logged and degraded.
type RecommendationService interface {
	Recommend(ctx context.Context, plan domain.Plan) *domain.AIResponse
}

type recommendationService struct {
	client   llm.LLMClient
	log      *zap.Logger
	outcomes []OutcomeObserver
}

var errNoClient = errors.New("recommendation client not configured")

// NewRecommendationService creates a RecommendationService. A nil client
// is allowed and makes every request degrade, which is how a missing API
// key surfaces to the operator.
func NewRecommendationService(client llm.LLMClient, log *zap.Logger, outcomes ...OutcomeObserver) RecommendationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &recommendationService{client: client, log: log.Named("recommend"), outcomes: outcomes}
}

func (s *recommendationService) Recommend(ctx context.Context, plan domain.Plan) *domain.AIResponse {
	resp, err := s.recommend(ctx, plan)
	if err != nil {
		s.log.Warn("recommendation failed, returning degraded response", zap.Error(err))
		resp = DegradedResponse()
		s.notify(ctx, OutcomeDegraded, resp)
		return resp
	}

	if len(resp.Suggestions) == 0 && resp.OperationAlert == "" {
		s.notify(ctx, OutcomeEmpty, resp)
	} else {
		s.notify(ctx, OutcomeOK, resp)
	}
	return resp
}

func (s *recommendationService) recommend(ctx context.Context, plan domain.Plan) (*domain.AIResponse, error) {
	if s.client == nil {
		return nil, errNoClient
	}

	out, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskRecommend,
		SystemPrompt: recommendSystemPrompt,
		UserPrompt:   BuildRecommendPrompt(plan),
		Schema:       RecommendSchema(),
	})
	if err != nil {
		return nil, err
	}

	resp, dropped, err := normalize(out.Text)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		s.log.Info("dropped malformed suggestions", zap.Int("dropped", dropped), zap.Int("kept", len(resp.Suggestions)))
	}
	return resp, nil
}

func (s *recommendationService) notify(ctx context.Context, outcome Outcome, resp *domain.AIResponse) {
	for _, o := range s.outcomes {
		if o != nil {
			o.OnRecommendation(ctx, outcome, resp)
		}
	}
}

// wireResponse mirrors the model output loosely so that shape problems can
// be told apart from unparseable text.
type wireResponse struct {
	OperationAlert *string         `json:"operationAlert"`
	Suggestions    json.RawMessage `json:"suggestions"`
}

// wireSuggestion uses pointers so that absent keys can be told apart from
// zero values. Every key is required.
type wireSuggestion struct {
	Title         *string      `json:"title"`
	FromShift     *string      `json:"fromShift"`
	ToShift       *string      `json:"toShift"`
	Role          *string      `json:"role"`
	Amount        *json.Number `json:"amount"`
	SuggestedTime *string      `json:"suggestedTime"`
	Reason        *string      `json:"reason"`
	Impact        *string      `json:"impact"`
}

func (w wireSuggestion) complete() bool {
	return w.Title != nil && w.FromShift != nil && w.ToShift != nil && w.Role != nil &&
		w.Amount != nil && w.SuggestedTime != nil && w.Reason != nil && w.Impact != nil
}

// NormalizeResponse converts raw model text into an AIResponse. Text that
// is not JSON is an error. JSON whose suggestions field is missing or not
// a list yields an empty response with no alert.
func NormalizeResponse(text string) (*domain.AIResponse, error) {
	resp, _, err := normalize(text)
	return resp, err
}

func normalize(text string) (*domain.AIResponse, int, error) {
	empty := &domain.AIResponse{Suggestions: []domain.OptimizationSuggestion{}}
	// A JSON document that is not an object has no suggestions field.
	doc := strings.TrimSpace(llm.StripCodeFences(text))
	if json.Valid([]byte(doc)) && !strings.HasPrefix(doc, "{") {
		return empty, 0, nil
	}

	wire, err := llm.ExtractJSON[wireResponse](text, nil)
	if err != nil {
		return nil, 0, err
	}

	list := bytes.TrimSpace(wire.Suggestions)
	if len(list) == 0 || list[0] != '[' {
		return empty, 0, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return empty, 0, nil
	}

	resp := &domain.AIResponse{Suggestions: make([]domain.OptimizationSuggestion, 0, len(items))}
	if wire.OperationAlert != nil {
		resp.OperationAlert = strings.TrimSpace(*wire.OperationAlert)
	}

	dropped := 0
	for _, item := range items {
		sg, ok := toSuggestion(item)
		if !ok {
			dropped++
			continue
		}
		resp.Suggestions = append(resp.Suggestions, sg)
	}
	return resp, dropped, nil
}

func toSuggestion(raw json.RawMessage) (domain.OptimizationSuggestion, bool) {
	var w wireSuggestion
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil || !w.complete() {
		return domain.OptimizationSuggestion{}, false
	}
	title := strings.TrimSpace(*w.Title)
	if title == "" {
		return domain.OptimizationSuggestion{}, false
	}
	from, err := domain.ParseShift(*w.FromShift)
	if err != nil {
		return domain.OptimizationSuggestion{}, false
	}
	to, err := domain.ParseShift(*w.ToShift)
	if err != nil {
		return domain.OptimizationSuggestion{}, false
	}
	role, err := domain.ParseRole(*w.Role)
	if err != nil {
		return domain.OptimizationSuggestion{}, false
	}
	amount, ok := parseAmount(*w.Amount)
	if !ok {
		return domain.OptimizationSuggestion{}, false
	}
	return domain.OptimizationSuggestion{
		Title:         title,
		FromShift:     from,
		ToShift:       to,
		Role:          role,
		Amount:        amount,
		SuggestedTime: *w.SuggestedTime,
		Reason:        *w.Reason,
		Impact:        *w.Impact,
	}, true
}

// parseAmount accepts integral numbers only, written plainly or with an
// exponent. Values beyond the int range saturate, so clamping to the
// available headcount still applies to them.
func parseAmount(n json.Number) (int, bool) {
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}
