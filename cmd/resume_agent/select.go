package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/selection"
)

func newSelectCommand() *cobra.Command {
	f := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the vault content most relevant to a job posting",
		Long: `Parse the job posting's requirements, score every vault item against them and
render a draft resume from the best matches. The committee is not run.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelect(cmd, f)
		},
	}
	addCommonFlags(cmd, f)
	addLLMFlags(cmd, f)
	addVaultFlags(cmd, f)
	addSelectorFlags(cmd, f)
	return cmd
}

func runSelect(cmd *cobra.Command, f *cliFlags) (err error) {
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
	items, err := s.loadVault(ctx)
	if err != nil {
		return err
	}

	client, closeClient, err := openClient(ctx, cfg, s.logger, s.metrics)
	if err != nil {
		return err
	}
	defer closeClient()

	opts := append([]selection.Option{
		selection.WithLogger(s.logger),
		selection.WithMetrics(s.metrics),
	}, s.selectorOptions(client)...)
	selector := selection.NewSelector(client, opts...)

	result, err := selector.SelectContentForJob(ctx, job, items, cfg.Selector)
	if err != nil {
		return fmt.Errorf("failed to select content: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintRequirements(result.Requirements)
		printer.PrintSelection(result)
	}
	if err := writeJSON(cmd.OutOrStdout(), cfg.Output, result); err != nil {
		return err
	}
	if err := writeResume(cfg.ResumeOut, result.DraftResume); err != nil {
		return err
	}
	if cfg.Output != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Selected %d of %d vault items (coverage %.0f%%)\nOutput: %s\n",
			len(result.SelectedItems), len(items), result.CoverageScore*100, cfg.Output)
	}
	return nil
}
