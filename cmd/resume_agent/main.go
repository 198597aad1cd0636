// Package main provides the entry point for the resume optimizer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_agent",
	Short: "Resume Optimizer CLI",
	Long: `Resume Optimizer tailors a resume to a job posting from a vault of career content.

A Selector picks the vault items most relevant to the posting's requirements and
renders a draft; a review committee (Advocate, Critic, Writer) then refines it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		newParseRequirementsCommand(),
		newSelectCommand(),
		newOptimizeCommand(),
		newImportVaultCommand(),
	)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
