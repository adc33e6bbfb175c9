package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/staffplan/internal/domain"
)

var scenarioCounter atomic.Int64

// PlanOption tweaks a plan built by NewTestPlan.
type PlanOption func(*domain.Plan)

// WithStaff replaces the head-count of one shift.
func WithStaff(shift domain.ShiftName, staff domain.Staff) PlanOption {
	return func(p *domain.Plan) {
		p.Staffing[shift] = staff
	}
}

// WithSchedule sets a single schedule entry.
func WithSchedule(shift domain.ShiftName, day domain.Day, entry string) PlanOption {
	return func(p *domain.Plan) {
		sched := p.Schedule[shift]
		if sched == nil {
			sched = domain.Schedule{}
		}
		sched[day] = entry
		p.Schedule[shift] = sched
	}
}

// WithWorkload sets the expected SKU volume for one day.
func WithWorkload(day domain.Day, sku int) PlanOption {
	return func(p *domain.Plan) {
		p.Workload[day] = sku
	}
}

// WithSKUPerPerson overrides the per-person throughput.
func WithSKUPerPerson(n int) PlanOption {
	return func(p *domain.Plan) {
		p.SKUPerPerson = n
	}
}

// AllOff marks every day of every shift as libre.
func AllOff() PlanOption {
	return func(p *domain.Plan) {
		for _, shift := range domain.Shifts {
			sched := domain.Schedule{}
			for _, day := range domain.Week {
				sched[day] = "libre"
			}
			p.Schedule[shift] = sched
		}
	}
}

// NewTestPlan returns the default plan with opts applied.
func NewTestPlan(opts ...PlanOption) domain.Plan {
	p := domain.DefaultPlan()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewTestScenario returns an unsaved scenario with a unique name.
func NewTestScenario(opts ...PlanOption) *domain.Scenario {
	n := scenarioCounter.Add(1)
	return &domain.Scenario{
		Name: fmt.Sprintf("scenario-%d", n),
		Plan: NewTestPlan(opts...),
	}
}

// NewTestResponse builds a response with one valid suggestion per pair of
// shifts given as from/to.
func NewTestResponse(alert string, moves ...domain.ShiftName) *domain.AIResponse {
	resp := &domain.AIResponse{OperationAlert: alert, Suggestions: []domain.OptimizationSuggestion{}}
	for i := 0; i+1 < len(moves); i += 2 {
		resp.Suggestions = append(resp.Suggestions, domain.OptimizationSuggestion{
			Title:         fmt.Sprintf("Mover personal %d", i/2+1),
			FromShift:     moves[i],
			ToShift:       moves[i+1],
			Role:          domain.RoleOperativo,
			Amount:        1,
			SuggestedTime: "Inmediato",
			Reason:        "Redistribuir operativos",
			Impact:        "Reduce la brecha",
		})
	}
	return resp
}
