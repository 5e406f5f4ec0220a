// Package cli provides the command-line interface for gooracle.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gooracle/internal/cli/commands"
	"github.com/ccollicutt/gooracle/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	// Check if the first argument might be a plugin command
	if len(args) > 0 {
		potentialCommand := args[0]
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					return plugins.Execute(pluginPath, args[1:])
				}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	commands.ExitCode = commands.ExitOK
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if len(args) > 0 {
			potentialCommand := args[0]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), plugins.FormatNotFoundError(potentialCommand))
					return commands.ExitError
				}
			}
		}
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return commands.ExitError
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gooracle",
		Short: "Run the Go oracle and turn its output into links",
		Long: `gooracle runs the Go oracle source analysis tool and annotates its output:
every "file:line:column: message" location becomes a terminal hyperlink
(text output) or a structured link record (JSON output).

  gooracle describe main.go:12:6
  gooracle referrers main.go:#240 ./...
  gooracle query callers pkg/server.go:40:2 example.com/app/cmd/app
  oracle -pos=main.go:#240 referrers . | gooracle scan

CONFIGURATION:
  Settings are read from --config, $GOORACLE_CONFIG, ./.gooracle.yaml or
  the user config directory (gooracle/config.yaml), then overridden by
  GOORACLE_* environment variables.

PLUGINS:
  Unknown commands are looked up as standalone binaries named
  gooracle-<command>, searched in order:
    1. Same directory as the gooracle binary
    2. ~/.gooracle/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.ConfigFile, "config", "", "Config file (default: search ./.gooracle.yaml and the user config dir)")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Diagnostic log level on stderr (debug|info|warn|error)")

	rootCmd.AddGroup(commands.ModeGroup)

	rootCmd.AddCommand(commands.NewQueryCommand(g))
	rootCmd.AddCommand(commands.NewModeCommands(g)...)
	rootCmd.AddCommand(commands.NewScanCommand(g))
	rootCmd.AddCommand(commands.NewModesCommand(g))
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
