package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/parsing"
)

func newParseRequirementsCommand() *cobra.Command {
	f := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "parse-requirements",
		Short: "Parse a job posting into structured requirements JSON",
		Long:  "Extract themes, domain, seniority and weighted requirements from a job posting using the configured LLM provider.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParseRequirements(cmd, f)
		},
	}
	addCommonFlags(cmd, f)
	addLLMFlags(cmd, f)
	return cmd
}

func runParseRequirements(cmd *cobra.Command, f *cliFlags) (err error) {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}
	job, err := loadJob(cfg.Job)
	if err != nil {
		return err
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()
	client, closeClient, err := openClient(ctx, cfg, s.logger, s.metrics)
	if err != nil {
		return err
	}
	defer closeClient()

	reqs, err := parsing.ParseRequirements(ctx, client, job)
	if err != nil {
		return fmt.Errorf("failed to parse requirements: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintRequirements(reqs)
	}
	if err := writeJSON(cmd.OutOrStdout(), cfg.Output, reqs); err != nil {
		return err
	}
	if cfg.Output != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d requirements\nOutput: %s\n", len(reqs.Requirements), cfg.Output)
	}
	return nil
}

// contextOrBackground returns ctx, or a background context when cobra was
// executed without one
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
