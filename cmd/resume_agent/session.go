package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/logging"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/parsing"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/selection"
	"github.com/jonathan/resume-optimizer/internal/types"
	"github.com/jonathan/resume-optimizer/internal/vault"
)

// llmScorerConcurrency bounds parallel scoring calls when --scorer=llm
const llmScorerConcurrency = 4

// openClient builds the LLM client for a run. Tests replace it with a mock.
var openClient = func(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (llm.Completer, func(), error) {
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, nil, err
	}

	opts := []llm.Option{
		llm.WithLogger(logger),
		llm.WithMetrics(m),
		llm.WithRetryPolicy(cfg.Retry.Policy()),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, llm.WithCache(llm.NewCache(cfg.Cache)))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, llm.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}

	gateway, err := llm.Open(ctx, cfg.LLMConfig(), apiKey, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return gateway, func() { _ = gateway.Close() }, nil
}

// session carries the per-invocation services shared by the commands
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newSession(cfg *config.Config) (*session, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &session{cfg: cfg, logger: logger, registry: registry, metrics: m}, nil
}

// close flushes the logger and writes the metrics textfile, if configured
func (s *session) close() error {
	_ = s.logger.Sync()
	if s.cfg.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.cfg.MetricsFile, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// selectorOptions returns the Selector options for the configured scorer
func (s *session) selectorOptions(client llm.Completer) []selection.Option {
	if s.cfg.Scorer == config.ScorerLLM {
		return []selection.Option{selection.WithScorer(selection.NewLLMScorer(client, llmScorerConcurrency))}
	}
	return nil
}

// loadVault reads every item from the configured vault file or database
func (s *session) loadVault(ctx context.Context) ([]types.ContentItem, error) {
	switch {
	case s.cfg.DatabaseURL != "":
		store, err := connectVault(ctx, s.cfg)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return listVault(ctx, store)
	case s.cfg.Vault != "":
		return listVault(ctx, vault.NewFileStore(s.cfg.Vault))
	default:
		return nil, fmt.Errorf("either --vault or --db-url must be provided (via flag or config)")
	}
}

func listVault(ctx context.Context, store vault.Store) ([]types.ContentItem, error) {
	items, err := store.ListContentItems(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load vault: %w", err)
	}
	return items, nil
}

func connectVault(ctx context.Context, cfg *config.Config) (*vault.PostgresStore, error) {
	if cfg.UserID == "" {
		return nil, fmt.Errorf("--user-id is required with --db-url")
	}
	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id format: %w", err)
	}
	store, err := vault.Connect(ctx, cfg.DatabaseURL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, nil
}

// loadJob reads a job posting. JSON files are validated against the job
// posting schema; anything else is treated as the posting's description,
// with HTML flattened to text.
func loadJob(path string) (*types.JobPosting, error) {
	if path == "" {
		return nil, fmt.Errorf("--job must be provided (via flag or config)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := schemas.Validate(schemas.JobPosting, data); err != nil {
			return nil, fmt.Errorf("job posting does not validate against schema: %w", err)
		}
		var job types.JobPosting
		if err := json.Unmarshal(data, &job); err != nil {
			return nil, fmt.Errorf("failed to parse job posting JSON: %w", err)
		}
		return &job, nil
	}

	text, err := parsing.CleanHTML(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to clean job posting: %w", err)
	}
	job := &types.JobPosting{Description: text}
	if job.IsEmpty() {
		return nil, fmt.Errorf("job posting %s is empty", path)
	}
	return job, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	if path == "" {
		_, err := w.Write(jsonBytes)
		return err
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// writeResume writes the markdown resume when a path is configured
func writeResume(path, resume string) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(resume), 0644); err != nil {
		return fmt.Errorf("failed to write resume file: %w", err)
	}
	return nil
}
