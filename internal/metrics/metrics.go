// Package metrics defines the Prometheus collectors reported by the optimizer.
// Collectors are registered against a caller-supplied registerer; a nil
// *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resume_optimizer"

// Metrics holds all collectors for one registry
type Metrics struct {
	LLMRequests     *prometheus.CounterVec
	LLMLatency      *prometheus.HistogramVec
	LLMTokens       *prometheus.CounterVec
	LLMRetries      *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	SelectorCovered prometheus.Histogram
	CommitteeRounds prometheus.Histogram
	Terminations    *prometheus.CounterVec
	FitImprovement  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// Passing prometheus.NewRegistry() keeps tests isolated.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "LLM gateway requests by provider, model and outcome",
			},
			[]string{"provider", "model", "status"},
		),
		LLMLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Provider call duration in seconds, including retries",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"provider", "model"},
		),
		LLMTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_tokens_total",
				Help:      "Tokens reported by providers",
			},
			[]string{"model", "type"},
		),
		LLMRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_retries_total",
				Help:      "Provider call retries after a failed attempt",
			},
			[]string{"provider"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cache_hits_total",
			Help:      "Responses served from the response cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cache_misses_total",
			Help:      "Requests not found in the response cache",
		}),
		SelectorCovered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selector_coverage_score",
			Help:      "Requirement coverage of selector drafts",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		CommitteeRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "committee_rounds",
			Help:      "Rounds executed per committee run",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}),
		Terminations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "committee_terminations_total",
				Help:      "Committee runs by termination reason",
			},
			[]string{"reason"},
		),
		FitImprovement: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "committee_fit_improvement",
			Help:      "Final minus initial critic fit score",
			Buckets:   []float64{-0.2, -0.1, 0, 0.05, 0.1, 0.2, 0.3, 0.5},
		}),
	}

	if reg != nil {
		collectors := []prometheus.Collector{
			m.LLMRequests, m.LLMLatency, m.LLMTokens, m.LLMRetries,
			m.CacheHits, m.CacheMisses, m.SelectorCovered,
			m.CommitteeRounds, m.Terminations, m.FitImprovement,
		}
		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// ObserveLLMRequest records a completed gateway request
func (m *Metrics) ObserveLLMRequest(provider, model, status string, seconds float64) {
	if m == nil {
		return
	}
	m.LLMRequests.WithLabelValues(provider, model, status).Inc()
	if status != "cached" {
		m.LLMLatency.WithLabelValues(provider, model).Observe(seconds)
	}
}

// ObserveTokens records prompt and completion token usage
func (m *Metrics) ObserveTokens(model string, prompt, completion int) {
	if m == nil {
		return
	}
	m.LLMTokens.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.LLMTokens.WithLabelValues(model, "completion").Add(float64(completion))
}

// IncRetry records one retry of a provider call
func (m *Metrics) IncRetry(provider string) {
	if m == nil {
		return
	}
	m.LLMRetries.WithLabelValues(provider).Inc()
}

// ObserveCache records a cache lookup outcome
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveSelection records the coverage of a selector run
func (m *Metrics) ObserveSelection(coverage float64) {
	if m == nil {
		return
	}
	m.SelectorCovered.Observe(coverage)
}

// ObserveCommittee records the outcome of a committee run
func (m *Metrics) ObserveCommittee(rounds int, reason string, improvement float64) {
	if m == nil {
		return
	}
	m.CommitteeRounds.Observe(float64(rounds))
	m.Terminations.WithLabelValues(reason).Inc()
	m.FitImprovement.Observe(improvement)
}
