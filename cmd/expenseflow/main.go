// Package main provides the CLI entry point for expenseflow.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pharmafield/expenseflow/cmd/expenseflow/commands"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "expenseflow",
	Short: "ExpenseFlow - Pharma field expense claim lifecycle",
	Long: `ExpenseFlow manages expense claims for pharma field reps.

It provides:
  - Draft, submit, review, approve and reject lifecycle with an
    append-only audit trail
  - A deterministic policy engine with a configurable meal limit
  - Bronze, silver and gold lake projections of every claim
  - A simulated storage trigger that enriches submitted claims`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "config file path (defaults when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&commands.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(commands.ClaimCmd)
	rootCmd.AddCommand(commands.VisitsCmd)
	rootCmd.AddCommand(commands.PolicyCmd)
	rootCmd.AddCommand(commands.LakeCmd)
	rootCmd.AddCommand(commands.PipelineCmd)
	rootCmd.AddCommand(commands.SeedCmd)
}
