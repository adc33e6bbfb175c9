package domain

import "time"

// OptimizationSuggestion proposes moving staff of one role between shifts.
type OptimizationSuggestion struct {
	Title         string    `json:"title"`
	FromShift     ShiftName `json:"fromShift"`
	ToShift       ShiftName `json:"toShift"`
	Role          Role      `json:"role"`
	Amount        int       `json:"amount"`
	SuggestedTime string    `json:"suggestedTime"`
	Reason        string    `json:"reason"`
	Impact        string    `json:"impact"`
}

// AIResponse is the normalized answer of the recommendation service.
type AIResponse struct {
	OperationAlert string                   `json:"operationAlert,omitempty"`
	Suggestions    []OptimizationSuggestion `json:"suggestions"`
}

// Clone copies the suggestion list so callers can drop entries freely.
func (r *AIResponse) Clone() *AIResponse {
	if r == nil {
		return nil
	}
	out := &AIResponse{OperationAlert: r.OperationAlert}
	out.Suggestions = append([]OptimizationSuggestion{}, r.Suggestions...)
	return out
}

// RecommendationRecord is one entry of the recommendation history.
type RecommendationRecord struct {
	ID              string     `json:"id"`
	ScenarioName    string     `json:"scenarioName,omitempty"`
	RequestedAt     time.Time  `json:"requestedAt"`
	Degraded        bool       `json:"degraded"`
	Alert           string     `json:"alert,omitempty"`
	SuggestionCount int        `json:"suggestionCount"`
	Response        AIResponse `json:"response"`
}
