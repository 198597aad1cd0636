package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/config"
)

// cliFlags holds the flag values shared by the commands. Each command
// registers only the groups it uses; apply ignores unregistered flags.
type cliFlags struct {
	configPath string

	// Inputs and outputs
	job         string
	vault       string
	userID      string
	databaseURL string
	out         string
	resumeOut   string
	metricsFile string

	// LLM
	provider      string
	apiKey        string
	modelLite     string
	modelStandard string
	modelAdvanced string
	rateLimit     float64
	scorer        string

	// Selector
	maxJobs            int
	maxSkills          int
	maxAccomplishments int
	maxEducation       int
	minRelevance       float64

	// Committee
	maxRounds            int
	targetFit            float64
	consensusThreshold   float64
	fastMode             bool
	skipCommittee        bool
	failOnCommitteeError bool

	verbose   bool
	logLevel  string
	logFormat string
}

func addCommonFlags(cmd *cobra.Command, f *cliFlags) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: console or json (default console)")
}

func addLLMFlags(cmd *cobra.Command, f *cliFlags) {
	cmd.Flags().StringVarP(&f.job, "job", "j", "", "Path to job posting (.json, .html or plain text)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider: gemini, openai or anthropic (default gemini)")
	// API key can be passed as a flag, or read from the provider's env var
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Provider API key (defaults to GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	cmd.Flags().StringVar(&f.modelLite, "model-lite", "", "Model for the lite tier")
	cmd.Flags().StringVar(&f.modelStandard, "model-standard", "", "Model for the standard tier")
	cmd.Flags().StringVar(&f.modelAdvanced, "model-advanced", "", "Model for the advanced tier")
	cmd.Flags().Float64Var(&f.rateLimit, "rate-limit", 0, "Maximum LLM requests per second (0 disables)")
}

func addVaultFlags(cmd *cobra.Command, f *cliFlags) {
	cmd.Flags().StringVar(&f.vault, "vault", "", "Path to content vault JSON (mutually exclusive with --db-url)")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var when --vault is not set)")
	cmd.Flags().StringVar(&f.userID, "user-id", "", "User UUID owning the vault (required with --db-url)")
}

func addSelectorFlags(cmd *cobra.Command, f *cliFlags) {
	cmd.Flags().StringVar(&f.resumeOut, "resume-out", "", "Path to write the resume markdown")
	cmd.Flags().StringVar(&f.scorer, "scorer", "", "Relevance scorer: lexical or llm (default lexical)")
	cmd.Flags().IntVar(&f.maxJobs, "max-jobs", 0, "Maximum job entries to keep")
	cmd.Flags().IntVar(&f.maxSkills, "max-skills", 0, "Maximum skills to keep")
	cmd.Flags().IntVar(&f.maxAccomplishments, "max-accomplishments", 0, "Maximum accomplishments per job")
	cmd.Flags().IntVar(&f.maxEducation, "max-education", 0, "Maximum education and certification items (0 for no cap)")
	cmd.Flags().Float64Var(&f.minRelevance, "min-relevance", 0, "Minimum relevance score for an item to be selected")
}

func addCommitteeFlags(cmd *cobra.Command, f *cliFlags) {
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", 0, "Maximum committee rounds")
	cmd.Flags().Float64Var(&f.targetFit, "target-fit", 0, "Stop once the critic's fit score reaches this value")
	cmd.Flags().Float64Var(&f.consensusThreshold, "consensus-threshold", 0, "Stop when advocate and critic scores are this close")
	cmd.Flags().BoolVar(&f.fastMode, "fast", false, "Use the lite model tier for the critic and writer")
	cmd.Flags().BoolVar(&f.skipCommittee, "skip-committee", false, "Return the selection draft without committee review")
	cmd.Flags().BoolVar(&f.failOnCommitteeError, "fail-on-committee-error", false, "Fail instead of falling back to the draft when the committee errors")
}

// resolve loads the config and validates it, reading the database URL
// from the environment when no vault file is given
func (f *cliFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.Vault == "" && cfg.DatabaseURL == "" && cmd.Flags().Lookup("db-url") != nil {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// load reads the config file, applies explicitly set flags over it and
// fills defaults for unset values
func (f *cliFlags) load(cmd *cobra.Command) (*config.Config, error) {
	// Step 1: Load config file if provided
	cfg := config.Defaults()
	if f.configPath != "" {
		loadedCfg, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	f.apply(cmd, &cfg)

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.Verbose && !cmd.Flags().Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	return &cfg, nil
}

// apply copies flags that were explicitly set onto cfg
func (f *cliFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	setString := func(name string, dst *string, value string) {
		if changed(name) {
			*dst = value
		}
	}
	setInt := func(name string, dst *int, value int) {
		if changed(name) {
			*dst = value
		}
	}
	setFloat := func(name string, dst *float64, value float64) {
		if changed(name) {
			*dst = value
		}
	}
	setBool := func(name string, dst *bool, value bool) {
		if changed(name) {
			*dst = value
		}
	}

	setString("job", &cfg.Job, f.job)
	setString("vault", &cfg.Vault, f.vault)
	setString("user-id", &cfg.UserID, f.userID)
	setString("db-url", &cfg.DatabaseURL, f.databaseURL)
	setString("out", &cfg.Output, f.out)
	setString("resume-out", &cfg.ResumeOut, f.resumeOut)
	setString("metrics-file", &cfg.MetricsFile, f.metricsFile)

	setString("provider", &cfg.Provider, f.provider)
	setString("api-key", &cfg.APIKey, f.apiKey)
	setFloat("rate-limit", &cfg.RateLimit, f.rateLimit)
	setString("scorer", &cfg.Scorer, f.scorer)

	models := map[string]string{
		"model-lite":     f.modelLite,
		"model-standard": f.modelStandard,
		"model-advanced": f.modelAdvanced,
	}
	for name, model := range models {
		if !changed(name) {
			continue
		}
		if cfg.Models == nil {
			cfg.Models = map[string]string{}
		}
		cfg.Models[name[len("model-"):]] = model
	}

	setInt("max-jobs", &cfg.Selector.MaxJobs, f.maxJobs)
	setInt("max-skills", &cfg.Selector.MaxSkills, f.maxSkills)
	setInt("max-accomplishments", &cfg.Selector.MaxAccomplishmentsPerJob, f.maxAccomplishments)
	setInt("max-education", &cfg.Selector.MaxEducation, f.maxEducation)
	setFloat("min-relevance", &cfg.Selector.MinRelevanceScore, f.minRelevance)

	setInt("max-rounds", &cfg.Committee.MaxRounds, f.maxRounds)
	setFloat("target-fit", &cfg.Committee.TargetFit, f.targetFit)
	setFloat("consensus-threshold", &cfg.Committee.ConsensusThreshold, f.consensusThreshold)
	setBool("fast", &cfg.Committee.FastMode, f.fastMode)
	setBool("skip-committee", &cfg.SkipCommittee, f.skipCommittee)
	setBool("fail-on-committee-error", &cfg.FailOnCommitteeError, f.failOnCommitteeError)

	setBool("verbose", &cfg.Verbose, f.verbose)
	setString("log-level", &cfg.LogLevel, f.logLevel)
	setString("log-format", &cfg.LogFormat, f.logFormat)
}
