package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/repository"
)

type scenarioSummary struct {
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Summary   capacity.Summary `json:"summary"`
}

type saveScenarioRequest struct {
	Name string `json:"name"`
}

func summarizeScenario(sc *domain.Scenario) scenarioSummary {
	return scenarioSummary{
		Name:      sc.Name,
		CreatedAt: sc.CreatedAt,
		UpdatedAt: sc.UpdatedAt,
		Summary:   capacity.Summarize(capacity.Derive(sc.Plan)),
	}
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.scenarios == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Scenarios unavailable", "no store configured", r.URL.Path)
		return false
	}
	return true
}

func (s *Server) ScenariosHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	list, err := s.scenarios.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]scenarioSummary, 0, len(list))
	for _, sc := range list {
		out = append(out, summarizeScenario(sc))
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveScenarioHandler stores the current plan under the given name,
// replacing an existing scenario with the same name.
func (s *Server) SaveScenarioHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var req saveScenarioRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.badRequest(w, r, errors.New("name is required"))
		return
	}
	sc := &domain.Scenario{Name: req.Name, Plan: s.ws.Snapshot().Plan}
	if err := s.scenarios.Save(r.Context(), sc); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ws.SetScenario(sc.Name)
	writeJSON(w, http.StatusCreated, summarizeScenario(sc))
}

func (s *Server) LoadScenarioHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	sc, err := s.scenarios.GetByName(r.Context(), r.PathValue("name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanResponse(s.ws.LoadScenario(sc.Name, sc.Plan)))
}

// DeleteScenarioHandler removes the scenario and its recommendation history.
func (s *Server) DeleteScenarioHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	name := r.PathValue("name")
	var err error
	if s.uow != nil {
		err = repository.DeleteScenario(r.Context(), s.uow, name)
	} else {
		err = s.scenarios.Delete(r.Context(), name)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
