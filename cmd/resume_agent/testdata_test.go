package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/llm/llmtest"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/prompts"
)

const testVaultJSON = `{
	"user_id": "550e8400-e29b-41d4-a716-446655440000",
	"items": [
		{
			"id": "job-1",
			"type": "job_entry",
			"content": "Senior Software Engineer at Acme Data",
			"metadata": {"company": "Acme Data", "title": "Senior Software Engineer", "start_date": "2019-01", "end_date": "present"}
		},
		{"id": "acc-1", "type": "accomplishment", "content": "Led a team of five engineers", "parent_id": "job-1"},
		{"id": "acc-2", "type": "accomplishment", "content": "Built a Python pipeline", "parent_id": "job-1"},
		{"id": "skill-1", "type": "skill", "content": "Python"}
	]
}`

const testJobJSON = `{
	"title": "Senior Data Engineer",
	"company": "Initech",
	"description": "Lead our data platform team.",
	"requirements": ["Python", "5+ years of experience", "Leadership"]
}`

const testRequirementsJSON = `{
	"themes": ["Data platform"],
	"seniority_level": "senior",
	"requirements": [
		{"text": "Python", "type": "skill", "importance": "must-have"},
		{"text": "5+ years of experience", "type": "experience", "importance": "must-have"},
		{"text": "Leadership", "type": "soft-skill", "importance": "must-have"}
	]
}`

const testFinalResume = "# Final Resume\n\n- Led Python platform work"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// scriptedModel answers requirement parsing and every committee role by
// system prompt. The critic's score clears the default target fit.
func scriptedModel() *llmtest.MockCompleter {
	responses := map[string]string{
		prompts.MustGet("requirements.json", "system"):       testRequirementsJSON,
		prompts.MustGet("committee.json", "advocate-system"): `{"fit_score": 0.92, "strengths": ["Python"]}`,
		prompts.MustGet("committee.json", "critic-system"):   `{"fit_score": 0.9, "genuine_gaps": []}`,
		prompts.MustGet("committee.json", "writer-system"):   testFinalResume,
	}
	m := &llmtest.MockCompleter{}
	m.CompleteFunc = func(_ context.Context, req llm.Request) (*llm.Response, error) {
		content, ok := responses[req.SystemPrompt]
		if !ok {
			content = "{}"
		}
		return &llm.Response{Content: content, Model: m.Model(req.Tier)}, nil
	}
	return m
}

// useClient replaces openClient for the duration of the test
func useClient(t *testing.T, client llm.Completer) {
	t.Helper()
	original := openClient
	openClient = func(context.Context, *config.Config, *zap.Logger, *metrics.Metrics) (llm.Completer, func(), error) {
		return client, func() {}, nil
	}
	t.Cleanup(func() { openClient = original })
}
