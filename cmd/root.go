// Package cmd contains all CLI commands for the hlockit binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/cmd/completion"
	cmdconfig "github.com/mapforge/hlockit/cmd/config"
	"github.com/mapforge/hlockit/cmd/doctor"
	cmdpresets "github.com/mapforge/hlockit/cmd/presets"
	"github.com/mapforge/hlockit/cmd/report"
	cmdshell "github.com/mapforge/hlockit/cmd/shell"
	"github.com/mapforge/hlockit/cmd/version"
	cmdwatch "github.com/mapforge/hlockit/cmd/watch"
	"github.com/mapforge/hlockit/cmd/workflows"
	"github.com/mapforge/hlockit/internal/config"
)

var (
	jsonOutput bool
	verbose    bool
	quiet      bool
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all
// subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hlockit",
		Short: "Typed CLI front-end for the hloc SfM pipeline",
		Long: `hlockit — Structure-from-Motion from your terminal.

A typed command surface over the hloc Hierarchical-Localization toolchain.
Extract features, match them, and reconstruct sparse models, with every
preset and path validated before a single subprocess runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
			if cfg, err := config.Load(); err == nil && !cfg.Output.Color {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show toolchain output and debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all status output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(workflows.NewExtractCommand())
	rootCmd.AddCommand(workflows.NewPairsCommand())
	rootCmd.AddCommand(workflows.NewMatchCommand())
	rootCmd.AddCommand(workflows.NewReconstructCommand())
	rootCmd.AddCommand(workflows.NewRunCommand())
	rootCmd.AddCommand(cmdpresets.NewCommand())
	rootCmd.AddCommand(report.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand(runForShell))
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
