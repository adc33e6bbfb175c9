// Package workspace owns the live planning state. Every edit produces a new
// immutable Snapshot; published snapshots are never modified afterwards.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/intelligence"
	"github.com/alexanderramin/staffplan/internal/staffing"
)

// HistoryLimit bounds the undo stack.
const HistoryLimit = 50

var (
	ErrUnknownShift = errors.New("unknown shift")
	ErrUnknownRole  = errors.New("unknown role")
	ErrUnknownDay   = errors.New("unknown day")
	ErrNoSuggestion = errors.New("no such suggestion")
)

// Snapshot is one published version of the planning state.
type Snapshot struct {
	Plan domain.Plan `json:"plan"`
	// Pending holds the last recommendation response, nil until one is requested.
	Pending    *domain.AIResponse `json:"pending,omitempty"`
	Requesting bool               `json:"requesting"`
	// Scenario names the saved scenario the plan came from, if any.
	Scenario string `json:"scenario,omitempty"`
	Version  uint64 `json:"version"`
	CanUndo  bool   `json:"canUndo"`
	CanRedo  bool   `json:"canRedo"`
}

// Loads derives the per-day capacity figures of the snapshot's plan.
func (s Snapshot) Loads() []capacity.DayLoad {
	return capacity.Derive(s.Plan)
}

// Summary aggregates Loads.
func (s Snapshot) Summary() capacity.Summary {
	return capacity.Summarize(s.Loads())
}

// Publisher receives every new snapshot. Publish is called with the
// workspace lock released and must not block for long. Concurrent edits
// may deliver snapshots out of order; Version is strictly increasing.
type Publisher interface {
	Publish(Snapshot)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Snapshot)

func (f PublisherFunc) Publish(s Snapshot) { f(s) }

// Option configures a Workspace.
type Option func(*Workspace)

func WithLogger(log *zap.Logger) Option {
	return func(w *Workspace) {
		if log != nil {
			w.log = log
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(w *Workspace) {
		w.publishers = append(w.publishers, p)
	}
}

// Workspace serializes edits to a plan and keeps undo/redo history.
// It is safe for concurrent use.
type Workspace struct {
	mu       sync.Mutex
	cur      Snapshot
	undo     []domain.Plan
	redo     []domain.Plan
	inflight int

	gateway    intelligence.RecommendationService
	publishers []Publisher
	log        *zap.Logger
}

// New creates a workspace holding plan. gateway may be nil, in which case
// recommendation requests return the degraded response.
func New(plan domain.Plan, gateway intelligence.RecommendationService, opts ...Option) *Workspace {
	w := &Workspace{
		cur:     Snapshot{Plan: plan.Normalize(), Version: 1},
		gateway: gateway,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.Named("workspace")
	return w
}

// Snapshot returns the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cur
}

// Subscribe adds a publisher after construction.
func (w *Workspace) Subscribe(p Publisher) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.publishers = append(w.publishers, p)
}

// SetStaffCount replaces the head-count of one role in one shift.
// Negative values are clamped to zero.
func (w *Workspace) SetStaffCount(shift domain.ShiftName, role domain.Role, value int) (Snapshot, error) {
	if !shift.Valid() {
		return w.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownShift, shift)
	}
	if !role.Valid() {
		return w.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return w.edit(func(p *domain.Plan) {
		p.Staffing = staffing.SetCount(p.Staffing, shift, role, value)
	}), nil
}

// SetStaffCountText is SetStaffCount for raw operator input; text that
// does not parse as a non-negative integer becomes zero.
func (w *Workspace) SetStaffCountText(shift domain.ShiftName, role domain.Role, text string) (Snapshot, error) {
	return w.SetStaffCount(shift, role, staffing.ParseCount(text))
}

// SetScheduleEntry replaces the free-text schedule entry of a shift on a day.
func (w *Workspace) SetScheduleEntry(shift domain.ShiftName, day domain.Day, text string) (Snapshot, error) {
	if !shift.Valid() {
		return w.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownShift, shift)
	}
	if !day.Valid() {
		return w.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	return w.edit(func(p *domain.Plan) {
		sched := p.Schedule[shift].Clone()
		sched[day] = text
		p.Schedule[shift] = sched
	}), nil
}

// SetWorkload replaces the expected SKU volume of a day, clamped to zero.
func (w *Workspace) SetWorkload(day domain.Day, value int) (Snapshot, error) {
	if !day.Valid() {
		return w.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	return w.edit(func(p *domain.Plan) {
		p.Workload[day] = max(value, 0)
	}), nil
}

func (w *Workspace) SetWorkloadText(day domain.Day, text string) (Snapshot, error) {
	return w.SetWorkload(day, staffing.ParseCount(text))
}

// SetThroughput replaces the SKUs one person handles per shift.
func (w *Workspace) SetThroughput(value int) Snapshot {
	return w.edit(func(p *domain.Plan) {
		p.SKUPerPerson = max(value, 0)
	})
}

func (w *Workspace) SetThroughputText(text string) Snapshot {
	return w.SetThroughput(staffing.ParseCount(text))
}

// ApplySuggestion performs pending suggestion i and removes it from the
// pending list. It reports how many people actually moved. A move of
// nobody leaves the plan and the undo history untouched.
func (w *Workspace) ApplySuggestion(i int) (Snapshot, int, error) {
	w.mu.Lock()
	if w.cur.Pending == nil || i < 0 || i >= len(w.cur.Pending.Suggestions) {
		snap := w.cur
		w.mu.Unlock()
		return snap, 0, fmt.Errorf("%w: %d", ErrNoSuggestion, i)
	}
	sg := w.cur.Pending.Suggestions[i]
	plan := w.cur.Plan.Clone()
	var moved int
	plan.Staffing, moved = staffing.Apply(plan.Staffing, sg)
	if moved > 0 {
		w.pushHistory()
		w.cur.Plan = plan
	}
	w.cur.Pending = without(w.cur.Pending, i)
	snap, pubs := w.publishLocked()
	w.mu.Unlock()

	w.log.Debug("suggestion applied",
		zap.String("role", string(sg.Role)),
		zap.String("from", string(sg.FromShift)),
		zap.String("to", string(sg.ToShift)),
		zap.Int("moved", moved))
	notify(pubs, snap)
	return snap, moved, nil
}

// DismissSuggestion drops pending suggestion i without touching the plan.
func (w *Workspace) DismissSuggestion(i int) (Snapshot, error) {
	w.mu.Lock()
	if w.cur.Pending == nil || i < 0 || i >= len(w.cur.Pending.Suggestions) {
		snap := w.cur
		w.mu.Unlock()
		return snap, fmt.Errorf("%w: %d", ErrNoSuggestion, i)
	}
	w.cur.Pending = without(w.cur.Pending, i)
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap, nil
}

// RequestRecommendations asks the gateway about the current plan. The
// gateway runs without the lock held so edits stay responsive; when
// several requests overlap the last one to finish wins.
func (w *Workspace) RequestRecommendations(ctx context.Context) Snapshot {
	w.mu.Lock()
	plan := w.cur.Plan.Clone()
	w.inflight++
	w.cur.Requesting = true
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)

	var resp *domain.AIResponse
	if w.gateway != nil {
		resp = w.gateway.Recommend(ctx, plan)
	}
	if resp == nil {
		resp = intelligence.DegradedResponse()
	}

	w.mu.Lock()
	w.inflight--
	w.cur.Requesting = w.inflight > 0
	w.cur.Pending = resp.Clone()
	snap, pubs = w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap
}

// Undo restores the previous plan. Pending suggestions are kept.
func (w *Workspace) Undo() Snapshot {
	w.mu.Lock()
	if len(w.undo) == 0 {
		snap := w.cur
		w.mu.Unlock()
		return snap
	}
	prev := w.undo[len(w.undo)-1]
	w.undo = w.undo[:len(w.undo)-1]
	w.redo = append(w.redo, w.cur.Plan)
	w.cur.Plan = prev
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap
}

// Redo re-applies the last undone plan.
func (w *Workspace) Redo() Snapshot {
	w.mu.Lock()
	if len(w.redo) == 0 {
		snap := w.cur
		w.mu.Unlock()
		return snap
	}
	next := w.redo[len(w.redo)-1]
	w.redo = w.redo[:len(w.redo)-1]
	w.undo = append(w.undo, w.cur.Plan)
	w.cur.Plan = next
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap
}

// Reset returns to the default plan and clears pending suggestions.
// The reset itself can be undone.
func (w *Workspace) Reset() Snapshot {
	return w.Load(domain.DefaultPlan())
}

// Load replaces the plan wholesale.
func (w *Workspace) Load(plan domain.Plan) Snapshot {
	return w.LoadScenario("", plan)
}

// LoadScenario replaces the plan with a saved scenario's and remembers its name.
func (w *Workspace) LoadScenario(name string, plan domain.Plan) Snapshot {
	plan = plan.Normalize()
	w.mu.Lock()
	w.pushHistory()
	w.cur.Plan = plan
	w.cur.Pending = nil
	w.cur.Scenario = name
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap
}

// SetScenario records that the current plan was saved under name.
func (w *Workspace) SetScenario(name string) Snapshot {
	w.mu.Lock()
	w.cur.Scenario = name
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap
}

// edit applies fn to a deep copy of the current plan and publishes it.
func (w *Workspace) edit(fn func(p *domain.Plan)) Snapshot {
	w.mu.Lock()
	plan := w.cur.Plan.Clone()
	fn(&plan)
	w.pushHistory()
	w.cur.Plan = plan
	snap, pubs := w.publishLocked()
	w.mu.Unlock()
	notify(pubs, snap)
	return snap
}

// pushHistory records the current plan for undo and clears redo.
// Callers hold w.mu.
func (w *Workspace) pushHistory() {
	w.undo = append(w.undo, w.cur.Plan)
	if len(w.undo) > HistoryLimit {
		w.undo = append(w.undo[:0:0], w.undo[len(w.undo)-HistoryLimit:]...)
	}
	w.redo = nil
}

// publishLocked bumps the version and returns the snapshot to hand to
// publishers once the lock is released. Callers hold w.mu.
func (w *Workspace) publishLocked() (Snapshot, []Publisher) {
	w.cur.Version++
	w.cur.CanUndo = len(w.undo) > 0
	w.cur.CanRedo = len(w.redo) > 0
	return w.cur, append([]Publisher(nil), w.publishers...)
}

func notify(pubs []Publisher, snap Snapshot) {
	for _, p := range pubs {
		p.Publish(snap)
	}
}

func without(resp *domain.AIResponse, i int) *domain.AIResponse {
	out := &domain.AIResponse{OperationAlert: resp.OperationAlert}
	out.Suggestions = make([]domain.OptimizationSuggestion, 0, len(resp.Suggestions)-1)
	out.Suggestions = append(out.Suggestions, resp.Suggestions[:i]...)
	out.Suggestions = append(out.Suggestions, resp.Suggestions[i+1:]...)
	return out
}
