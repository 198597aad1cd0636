package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/vault"
)

func newImportVaultCommand() *cobra.Command {
	f := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "import-vault",
		Short: "Import a content vault JSON file into PostgreSQL",
		Long:  "Validate a content vault file and upsert its items for a user, creating the content_items table if needed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImportVault(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	addVaultFlags(cmd, f)
	return cmd
}

func runImportVault(cmd *cobra.Command, f *cliFlags) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	// Vault and database URL are both inputs here, so the exclusivity check
	// in resolve does not apply
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}
	if cfg.Vault == "" {
		return fmt.Errorf("--vault is required")
	}

	items, err := vault.LoadFile(cfg.Vault)
	if err != nil {
		return err
	}

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	cfg.DatabaseURL = dbURL

	store, err := connectVault(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := store.ImportContentItems(ctx, items); err != nil {
		return fmt.Errorf("failed to import vault: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d content items for user %s\n", len(items), cfg.UserID)
	return nil
}
