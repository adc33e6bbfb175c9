package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/workspace"
)

// planResponse is a snapshot plus the figures derived from it.
type planResponse struct {
	workspace.Snapshot
	Loads   []capacity.DayLoad `json:"loads"`
	Summary capacity.Summary   `json:"summary"`
}

func newPlanResponse(snap workspace.Snapshot) planResponse {
	loads := snap.Loads()
	return planResponse{Snapshot: snap, Loads: loads, Summary: capacity.Summarize(loads)}
}

type capacityResponse struct {
	Loads   []capacity.DayLoad `json:"loads"`
	Summary capacity.Summary   `json:"summary"`
}

type applyResponse struct {
	planResponse
	Moved int `json:"moved"`
}

// fail maps workspace and repository errors onto problem responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workspace.ErrUnknownShift),
		errors.Is(err, workspace.ErrUnknownRole),
		errors.Is(err, workspace.ErrUnknownDay):
		writeProblem(w, http.StatusBadRequest, "Unknown key", err.Error(), r.URL.Path)
	case errors.Is(err, workspace.ErrNoSuggestion):
		writeProblem(w, http.StatusNotFound, "No such suggestion", err.Error(), r.URL.Path)
	case errors.Is(err, repository.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not found", err.Error(), r.URL.Path)
	default:
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeProblem(w, http.StatusInternalServerError, "Internal error", "", r.URL.Path)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeProblem(w, http.StatusBadRequest, "Bad request", err.Error(), r.URL.Path)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) PlanHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.Snapshot()))
}

func (s *Server) CapacityHandler(w http.ResponseWriter, r *http.Request) {
	loads := s.ws.Snapshot().Loads()
	writeJSON(w, http.StatusOK, capacityResponse{Loads: loads, Summary: capacity.Summarize(loads)})
}

func (s *Server) StaffingHandler(w http.ResponseWriter, r *http.Request) {
	shift, err := domain.ParseShift(r.PathValue("shift"))
	if err != nil {
		s.fail(w, r, errors.Join(workspace.ErrUnknownShift, err))
		return
	}
	role, err := domain.ParseRole(r.PathValue("role"))
	if err != nil {
		s.fail(w, r, errors.Join(workspace.ErrUnknownRole, err))
		return
	}
	n, err := readCount(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	snap, err := s.ws.SetStaffCount(shift, role, n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(snap))
}

func (s *Server) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	shift, err := domain.ParseShift(r.PathValue("shift"))
	if err != nil {
		s.fail(w, r, errors.Join(workspace.ErrUnknownShift, err))
		return
	}
	day, err := domain.ParseDay(r.PathValue("day"))
	if err != nil {
		s.fail(w, r, errors.Join(workspace.ErrUnknownDay, err))
		return
	}
	text, err := readText(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	snap, err := s.ws.SetScheduleEntry(shift, day, text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(snap))
}

func (s *Server) WorkloadHandler(w http.ResponseWriter, r *http.Request) {
	day, err := domain.ParseDay(r.PathValue("day"))
	if err != nil {
		s.fail(w, r, errors.Join(workspace.ErrUnknownDay, err))
		return
	}
	n, err := readCount(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	snap, err := s.ws.SetWorkload(day, n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(snap))
}

func (s *Server) ThroughputHandler(w http.ResponseWriter, r *http.Request) {
	n, err := readCount(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.SetThroughput(n)))
}

func (s *Server) UndoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.Undo()))
}

func (s *Server) RedoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.Redo()))
}

func (s *Server) ResetHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.Reset()))
}

// RecommendHandler blocks until the gateway answers. A failed model call
// still yields 200 with the degraded response.
func (s *Server) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil {
		if res := s.limiter.Reserve(); !res.OK() || res.Delay() > 0 {
			retry := int(res.Delay().Seconds()) + 1
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeProblem(w, http.StatusTooManyRequests, "Too many recommendation requests",
				"try again in "+strconv.Itoa(retry)+"s", r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.RequestRecommendations(r.Context())))
}

func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeProblem(w, http.StatusServiceUnavailable, "History unavailable", "no store configured", r.URL.Path)
		return
	}
	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.badRequest(w, r, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	recs, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []*domain.RecommendationRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func suggestionIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, errors.Join(workspace.ErrNoSuggestion, err)
	}
	return i, nil
}

func (s *Server) ApplySuggestionHandler(w http.ResponseWriter, r *http.Request) {
	i, err := suggestionIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, moved, err := s.ws.ApplySuggestion(i)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applyResponse{planResponse: newPlanResponse(snap), Moved: moved})
}

func (s *Server) DismissSuggestionHandler(w http.ResponseWriter, r *http.Request) {
	i, err := suggestionIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := s.ws.DismissSuggestion(i)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(snap))
}
