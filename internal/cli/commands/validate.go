package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gooracle/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate a gooracle configuration file without running a query.
Without an argument the file named by --config or found in the default
locations is checked.

Checks:
  - YAML syntax
  - Output format, link mode and link template
  - Timeout and log level
  - Mode definitions (names, commands, position requirements)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.ConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(cmd, path)
		},
	}
}

func runValidate(cmd *cobra.Command, configPath string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	cfg, err := config.Find(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Path() == "" {
		fmt.Fprintln(w, "No configuration file found, defaults are in effect.")
	} else {
		fmt.Fprintf(w, "Validating %s...\n", cfg.Path())
	}

	modes, err := cfg.ModeSet()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	oraclePath := cfg.Oracle.Path
	if oraclePath == "" {
		oraclePath = "(search GOBIN, GOPATH/bin, PATH)"
	}
	fmt.Fprintf(w, "  Oracle:  %s\n", oraclePath)
	if len(cfg.Oracle.Scope) > 0 {
		fmt.Fprintf(w, "  Scope:   %s\n", strings.Join(cfg.Oracle.Scope, ", "))
	}
	fmt.Fprintf(w, "  Output:  %s (links %s)\n", cfg.Output.Format, cfg.Output.Links)
	fmt.Fprintf(w, "  Timeout: %s\n", cfg.Oracle.Timeout)
	fmt.Fprintf(w, "  Modes:   %d\n", modes.Len())

	if len(cfg.Modes) > 0 {
		fmt.Fprintf(w, "\nConfigured modes:\n")
		for i, mc := range cfg.Modes {
			m, _ := modes.Lookup(mc.Name)
			fmt.Fprintf(w, "  %d. %s -> %s\n", i+1, m.Name, m.Subcommand())
			if mc.Description != "" {
				fmt.Fprintf(w, "     %s\n", mc.Description)
			}
		}
	}

	return nil
}
