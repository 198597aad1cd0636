package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/resume-optimizer/internal/metrics"
)

// Gateway is the single entry point for model calls. It resolves the model,
// consults the cache, waits on the rate limiter, and retries transient
// provider failures before normalizing the response.
type Gateway struct {
	backend Backend
	config  *Config
	cache   *Cache
	retry   RetryPolicy
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Gateway
type Option func(*Gateway)

// WithCache sets the response cache. A nil cache disables caching.
func WithCache(cache *Cache) Option {
	return func(g *Gateway) { g.cache = cache }
}

// WithRetryPolicy replaces DefaultRetryPolicy
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(g *Gateway) { g.retry = policy }
}

// WithRateLimit throttles provider calls. Cache hits are not throttled.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(g *Gateway) { g.limiter = limiter }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records request, token, retry and cache metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// NewGateway wraps a backend
func NewGateway(backend Backend, config *Config, opts ...Option) *Gateway {
	if config == nil {
		config = DefaultConfig()
	}
	g := &Gateway{
		backend: backend,
		config:  config.withDefaults(),
		retry:   DefaultRetryPolicy(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open creates the configured provider backend and wraps it in a Gateway
func Open(ctx context.Context, config *Config, apiKey string, opts ...Option) (*Gateway, error) {
	backend, err := NewBackend(ctx, config, apiKey)
	if err != nil {
		return nil, err
	}
	return NewGateway(backend, config, opts...), nil
}

// Model returns the configured model name for a tier
func (g *Gateway) Model(tier ModelTier) string {
	return g.config.GetModel(tier)
}

// Provider returns the backend's provider
func (g *Gateway) Provider() Provider {
	return g.backend.Name()
}

// Close releases the backend
func (g *Gateway) Close() error {
	return g.backend.Close()
}

// Complete sends a request through cache, rate limiter and retry
func (g *Gateway) Complete(ctx context.Context, req Request) (*Response, error) {
	userPrompt, ok := lastUserMessage(req.Messages)
	if !ok {
		return nil, &InvalidRequestError{Message: "request has no user message"}
	}

	model := g.resolveModel(req)
	if model == "" {
		return nil, &InvalidRequestError{Message: "no model configured for tier " + string(req.Tier)}
	}

	temperature := g.config.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := g.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	provider := string(g.backend.Name())
	key := CacheKey(model, temperature, req.SystemPrompt, userPrompt)
	if cached, hit := g.cache.Get(key); hit {
		g.metrics.ObserveCache(true)
		g.metrics.ObserveLLMRequest(provider, model, "cached", 0)
		g.logger.Debug("LLM cache hit", zap.String("model", model))
		cached.Cached = true
		return cached, nil
	}
	if g.cache != nil {
		g.metrics.ObserveCache(false)
	}

	providerReq := ProviderRequest{
		Model:        model,
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	}

	policy := g.retry
	userOnRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		g.metrics.IncRetry(provider)
		g.logger.Warn("LLM call failed, retrying",
			zap.String("provider", provider),
			zap.String("model", model),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if userOnRetry != nil {
			userOnRetry(attempt, err, delay)
		}
	}

	start := time.Now()
	resp, err := WithRetry(ctx, policy, func(ctx context.Context) (*Response, error) {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()

		raw, err := g.backend.Send(callCtx, providerReq)
		if err != nil {
			return nil, wrapProviderError(g.backend.Name(), err)
		}
		return normalize(raw, model)
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		g.metrics.ObserveLLMRequest(provider, model, "error", elapsed)
		g.logger.Error("LLM call failed",
			zap.String("provider", provider),
			zap.String("model", model),
			zap.Error(err),
		)
		return nil, err
	}

	g.metrics.ObserveLLMRequest(provider, model, "ok", elapsed)
	if resp.Usage != nil {
		g.metrics.ObserveTokens(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	g.logger.Debug("LLM call completed",
		zap.String("provider", provider),
		zap.String("model", resp.Model),
		zap.Float64("seconds", elapsed),
	)

	g.cache.Set(key, resp)
	return resp, nil
}

func (g *Gateway) resolveModel(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	tier := req.Tier
	if tier == "" {
		tier = TierStandard
	}
	return g.config.GetModel(tier)
}
