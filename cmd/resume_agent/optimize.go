package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
	"github.com/jonathan/resume-optimizer/internal/types"
)

func newOptimizeCommand() *cobra.Command {
	f := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the full optimization pipeline end-to-end",
		Long: `Orchestrates the whole optimization: requirement parsing -> content selection -> draft -> committee review (advocate -> critic -> writer).

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptimize(cmd, f)
		},
	}
	addCommonFlags(cmd, f)
	addLLMFlags(cmd, f)
	addVaultFlags(cmd, f)
	addSelectorFlags(cmd, f)
	addCommitteeFlags(cmd, f)
	return cmd
}

func runOptimize(cmd *cobra.Command, f *cliFlags) (err error) {
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

	progress := cmd.ErrOrStderr()
	orchestrator := pipeline.NewOrchestrator(client,
		pipeline.WithLogger(s.logger),
		pipeline.WithMetrics(s.metrics),
		pipeline.WithSelectorOptions(s.selectorOptions(client)...),
		pipeline.WithProgress(progressPrinter(progress, cfg.Verbose)),
	)

	result, err := orchestrator.BuildOptimizedResume(ctx, job, items, cfg.Pipeline())
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(progress)
		printer.PrintCommitteeResult(result.Committee)
		printer.PrintMetrics(result.Metrics)
	}
	for _, w := range result.Warnings {
		_, _ = fmt.Fprintf(progress, "Warning: %s\n", w)
	}

	if err := writeJSON(cmd.OutOrStdout(), cfg.Output, result); err != nil {
		return err
	}
	if err := writeResume(cfg.ResumeOut, result.FinalResume); err != nil {
		return err
	}
	if cfg.Output != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Run %s complete: fit %.2f -> %.2f\nOutput: %s\n",
			result.RunID, result.Metrics.InitialFitEstimate, result.Metrics.FinalFit, cfg.Output)
	}
	return nil
}

// progressPrinter writes one line per pipeline event and, in verbose mode,
// the event's payload as a formatted box
func progressPrinter(w io.Writer, verbose bool) pipeline.ProgressCallback {
	printer := observability.NewPrinter(w)
	return func(event pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", event.Step, event.Message)
		if !verbose {
			return
		}
		switch content := event.Content.(type) {
		case *types.SelectionResult:
			printer.PrintRequirements(content.Requirements)
			printer.PrintSelection(content)
		case types.CommitteeRound:
			printer.PrintCommitteeRound(content)
		}
	}
}
