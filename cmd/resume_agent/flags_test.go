package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/committee"
	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/selection"
)

// parsedCommand returns a command with every flag group registered and args parsed
func parsedCommand(t *testing.T, args ...string) (*cobra.Command, *cliFlags) {
	t.Helper()
	f := &cliFlags{}
	cmd := &cobra.Command{Use: "test"}
	addCommonFlags(cmd, f)
	addLLMFlags(cmd, f)
	addVaultFlags(cmd, f)
	addSelectorFlags(cmd, f)
	addCommitteeFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cmd, f := parsedCommand(t)

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, config.ScorerLexical, cfg.Scorer)
	assert.Equal(t, selection.DefaultConfig(), cfg.Selector)
	assert.Equal(t, committee.DefaultConfig(), cfg.Committee)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestResolve_FlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"provider": "openai",
		"scorer": "llm",
		"models": {"lite": "gpt-4o-mini", "advanced": "gpt-4.1"},
		"committee": {"max_rounds": 5, "target_fit": 0.9, "consensus_threshold": 0.05}
	}`)

	cmd, f := parsedCommand(t,
		"--config", path,
		"--provider", "anthropic",
		"--model-advanced", "claude-opus",
		"--max-rounds", "2",
		"--max-jobs", "1",
		"--fast",
		"--skip-committee",
	)

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, config.ScorerLLM, cfg.Scorer)
	assert.Equal(t, map[string]string{"lite": "gpt-4o-mini", "advanced": "claude-opus"}, cfg.Models)
	assert.Equal(t, 2, cfg.Committee.MaxRounds)
	assert.Equal(t, 0.9, cfg.Committee.TargetFit)
	assert.True(t, cfg.Committee.FastMode)
	assert.True(t, cfg.SkipCommittee)
	assert.Equal(t, 1, cfg.Selector.MaxJobs)
	assert.Equal(t, selection.DefaultConfig().MaxSkills, cfg.Selector.MaxSkills)
}

func TestResolve_UnchangedFlagsKeepConfigValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"skip_committee": true, "rate_limit": 2}`)

	cmd, f := parsedCommand(t, "--config", path)

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)
	assert.True(t, cfg.SkipCommittee)
	assert.Equal(t, 2.0, cfg.RateLimit)
}

func TestResolve_VerboseEnablesDebugLogging(t *testing.T) {
	cmd, f := parsedCommand(t, "--verbose")
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	cmd, f = parsedCommand(t, "--verbose", "--log-level", "warn")
	cfg, err = f.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestResolve_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/resume")

	cmd, f := parsedCommand(t)
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/resume", cfg.DatabaseURL)

	// A vault file takes precedence over the environment
	vaultPath := writeFile(t, t.TempDir(), "vault.json", testVaultJSON)
	cmd, f = parsedCommand(t, "--vault", vaultPath)
	cfg, err = f.resolve(cmd)
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "missing.json")}, "failed to load config"},
		{"vault and db", []string{"--vault", "v.json", "--db-url", "postgres://x"}, "mutually exclusive"},
		{"unknown provider", []string{"--provider", "cohere"}, "Provider"},
		{"unknown scorer", []string{"--scorer", "semantic"}, "Scorer"},
		{"out of range fit", []string{"--target-fit", "1.5"}, "TargetFit"},
		{"missing job", []string{"--job", "/nonexistent/job.json"}, "job file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, f := parsedCommand(t, tt.args...)
			_, err := f.resolve(cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_SkipsValidation(t *testing.T) {
	cmd, f := parsedCommand(t, "--vault", "v.json", "--db-url", "postgres://x")

	cfg, err := f.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "v.json", cfg.Vault)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
}
