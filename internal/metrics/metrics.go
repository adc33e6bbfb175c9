// Package metrics holds the Prometheus collectors of the staffplan server.
package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/intelligence"
	"github.com/alexanderramin/staffplan/internal/llm"
)

var (
	// Registry is the dedicated registry exposed on /metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "staffplan_http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "staffplan_http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// LLMCalls counts model calls by provider and status.
	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "staffplan_llm_calls_total", Help: "LLM calls by provider and status."},
		[]string{"provider", "model", "status"},
	)
	// LLMLatency tracks model call latency in milliseconds.
	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "staffplan_llm_latency_ms", Help: "LLM call latency in ms.", Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000}},
		[]string{"provider", "status"},
	)

	// Recommendations counts recommendation results by outcome.
	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "staffplan_recommendations_total", Help: "Recommendation requests by outcome."},
		[]string{"outcome"},
	)
	// Suggestions counts suggestions returned to operators.
	Suggestions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "staffplan_suggestions_total", Help: "Suggestions returned by the recommendation service."},
	)

	// OverCapacityDays is the number of days of the current plan whose
	// workload exceeds capacity.
	OverCapacityDays = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "staffplan_over_capacity_days", Help: "Days of the current plan over capacity."},
	)
	// DayCapacity and DayWorkload expose the current plan per day.
	DayCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "staffplan_day_capacity_sku", Help: "Derived capacity per day in SKUs."},
		[]string{"day"},
	)
	DayWorkload = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "staffplan_day_workload_sku", Help: "Planned workload per day in SKUs."},
		[]string{"day"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests, HTTPDuration)
		Registry.MustRegister(LLMCalls, LLMLatency)
		Registry.MustRegister(Recommendations, Suggestions)
		Registry.MustRegister(OverCapacityDays, DayCapacity, DayWorkload)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// LLMObserver records model calls. It satisfies llm.Observer.
type LLMObserver struct{}

func (LLMObserver) OnCallComplete(e llm.LLMCallEvent) {
	status := "ok"
	if !e.Success {
		status = e.ErrorCode
	}
	LLMCalls.WithLabelValues(string(e.Provider), e.Model, status).Inc()
	LLMLatency.WithLabelValues(string(e.Provider), status).Observe(float64(e.LatencyMs))
}

// OutcomeObserver records recommendation outcomes. It satisfies
// intelligence.OutcomeObserver.
type OutcomeObserver struct{}

func (OutcomeObserver) OnRecommendation(_ context.Context, o intelligence.Outcome, resp *domain.AIResponse) {
	Recommendations.WithLabelValues(string(o)).Inc()
	if o != intelligence.OutcomeDegraded && resp != nil {
		Suggestions.Add(float64(len(resp.Suggestions)))
	}
}

// ObservePlan refreshes the plan gauges from a fresh derivation.
func ObservePlan(p domain.Plan) {
	loads := capacity.Derive(p)
	over := 0
	for _, l := range loads {
		if l.OverCapacity {
			over++
		}
		DayCapacity.WithLabelValues(string(l.Day)).Set(float64(l.Capacity))
		DayWorkload.WithLabelValues(string(l.Day)).Set(float64(l.Workload))
	}
	OverCapacityDays.Set(float64(over))
}
