// Package api exposes the workspace over HTTP and WebSocket.
package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/metrics"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/workspace"
)

// Deps are the collaborators of a Server. Workspace is required; without
// Scenarios and UoW the scenario routes answer 503.
type Deps struct {
	Workspace *workspace.Workspace
	Scenarios repository.ScenarioRepo
	History   repository.RecommendationRepo
	UoW       db.UnitOfWork
	Log       *zap.Logger

	// RecommendPerMinute and RecommendBurst rate-limit recommendation
	// requests. Zero disables the limit.
	RecommendPerMinute float64
	RecommendBurst     int
}

type Server struct {
	ws        *workspace.Workspace
	scenarios repository.ScenarioRepo
	history   repository.RecommendationRepo
	uow       db.UnitOfWork
	log       *zap.Logger
	limiter   *rate.Limiter
	broker    *Broker
}

// NewServer builds a Server and subscribes its broker and the plan gauges
// to the workspace.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		ws:        d.Workspace,
		scenarios: d.Scenarios,
		history:   d.History,
		uow:       d.UoW,
		log:       log.Named("api"),
		broker:    NewBroker(),
	}
	if d.RecommendPerMinute > 0 {
		burst := max(d.RecommendBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(d.RecommendPerMinute/60), burst)
	}

	metrics.RegisterDefault()
	metrics.ObservePlan(s.ws.Snapshot().Plan)
	s.ws.Subscribe(s.broker)
	s.ws.Subscribe(workspace.PublisherFunc(func(snap workspace.Snapshot) {
		metrics.ObservePlan(snap.Plan)
	}))
	return s
}

// Broker returns the snapshot fan-out used by the WebSocket route.
func (s *Server) Broker() *Broker { return s.broker }

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/plan", s.PlanHandler)
	mux.HandleFunc("PUT /v1/plan/staffing/{shift}/{role}", s.StaffingHandler)
	mux.HandleFunc("PUT /v1/plan/schedule/{shift}/{day}", s.ScheduleHandler)
	mux.HandleFunc("PUT /v1/plan/workload/{day}", s.WorkloadHandler)
	mux.HandleFunc("PUT /v1/plan/throughput", s.ThroughputHandler)
	mux.HandleFunc("POST /v1/plan/undo", s.UndoHandler)
	mux.HandleFunc("POST /v1/plan/redo", s.RedoHandler)
	mux.HandleFunc("POST /v1/plan/reset", s.ResetHandler)
	mux.HandleFunc("GET /v1/capacity", s.CapacityHandler)

	mux.HandleFunc("POST /v1/recommendations", s.RecommendHandler)
	mux.HandleFunc("GET /v1/recommendations", s.HistoryHandler)
	mux.HandleFunc("POST /v1/suggestions/{index}/apply", s.ApplySuggestionHandler)
	mux.HandleFunc("DELETE /v1/suggestions/{index}", s.DismissSuggestionHandler)

	mux.HandleFunc("GET /v1/scenarios", s.ScenariosHandler)
	mux.HandleFunc("POST /v1/scenarios", s.SaveScenarioHandler)
	mux.HandleFunc("POST /v1/scenarios/{name}/load", s.LoadScenarioHandler)
	mux.HandleFunc("DELETE /v1/scenarios/{name}", s.DeleteScenarioHandler)

	mux.HandleFunc("GET /v1/ws", s.WSHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", s.HealthHandler)

	return s.logMiddleware(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack is needed for WebSocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		status := strconv.Itoa(rec.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, pattern, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, pattern, status).Observe(dur.Seconds())
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", dur),
			zap.String("remote", r.RemoteAddr))
	})
}
