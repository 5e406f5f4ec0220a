package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gooracle/pkg/oracle"
)

// NewModesCommand creates the modes command.
func NewModesCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the available oracle modes",
		Long: `List the oracle modes gooracle can run: the oracle's own modes plus
any defined or overridden in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModes(cmd, g)
		},
	}
}

func runModes(cmd *cobra.Command, g *GlobalOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(ctx, g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	modes, err := s.cfg.ModeSet()
	if err != nil {
		return fmt.Errorf("loading modes: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tPOSITION\tANNOTATED\tRUNS\tDESCRIPTION")
	for _, m := range modes.Modes() {
		runs := m.Subcommand()
		if len(m.Args) > 0 {
			runs = strings.Join(m.Args, " ") + " " + runs
		}
		annotated := "yes"
		if !m.Annotate {
			annotated = "no"
		}
		name := m.Name
		if !oracle.IsBuiltin(m.Name) {
			name += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, m.Position, annotated, runs, m.Short)
	}
	return tw.Flush()
}
