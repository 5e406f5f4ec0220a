package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gooracle/pkg/location"
	"github.com/ccollicutt/gooracle/pkg/oracle"
	"github.com/ccollicutt/gooracle/pkg/output"
	"github.com/ccollicutt/gooracle/pkg/parser"
	"github.com/ccollicutt/gooracle/pkg/resolve"
)

const modeGroupID = "modes"

// ModeGroup groups the per-mode shortcut commands in help output.
var ModeGroup = &cobra.Group{ID: modeGroupID, Title: "Oracle Modes:"}

// QueryOptions holds command-line options for oracle queries.
type QueryOptions struct {
	OutputOptions

	Oracle  string
	Scope   []string
	Args    []string
	Timeout time.Duration
	DryRun  bool
}

// NewQueryCommand creates the query command, which runs any mode by name,
// including modes defined in the configuration file.
func NewQueryCommand(g *GlobalOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <mode> [position] [scope...]",
		Short: "Run an oracle query and annotate its output",
		Long: `Run the oracle in the given mode and print its output with every
"file:line:column: message" location turned into a link.

Positions are given as file:#offset, file:#start,#end, file:line or
file:line:column. Relative paths are resolved against the work directory.

Exit codes:
  0 - Query succeeded
  1 - The oracle exited with an error (its output is still printed)
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, g, opts, args[0], args[1:])
		},
	}

	addQueryFlags(cmd, opts)
	return cmd
}

// NewModeCommands creates one shortcut command per built-in mode, so that
// "gooracle describe main.go:3:6" is "gooracle query describe main.go:3:6".
func NewModeCommands(g *GlobalOptions) []*cobra.Command {
	modes := oracle.DefaultModes().Modes()
	cmds := make([]*cobra.Command, 0, len(modes))

	for _, m := range modes {
		name := m.Name
		opts := &QueryOptions{}

		use := name + " <position> [scope...]"
		args := cobra.MinimumNArgs(1)
		if m.Position != oracle.PositionRequired {
			use = name + " [position] [scope...]"
			args = cobra.ArbitraryArgs
		}

		cmd := &cobra.Command{
			Use:     use,
			Short:   m.Short,
			Args:    args,
			GroupID: modeGroupID,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runQuery(cmd, g, opts, name, args)
			},
		}
		addQueryFlags(cmd, opts)
		cmds = append(cmds, cmd)
	}

	return cmds
}

func addQueryFlags(cmd *cobra.Command, opts *QueryOptions) {
	addOutputFlags(cmd, &opts.OutputOptions)
	cmd.Flags().StringVar(&opts.Oracle, "oracle", "", "Path to the oracle binary (overrides GOORACLE_PATH and config)")
	cmd.Flags().StringSliceVar(&opts.Scope, "scope", nil, "Packages to analyze (can be repeated)")
	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "Extra flag passed to the oracle before the mode (can be repeated)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Query time limit, 0 for none (default from config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the oracle command line without running it")
}

func addOutputFlags(cmd *cobra.Command, opts *OutputOptions) {
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Links, "links", "", "Terminal hyperlinks (auto|always|never)")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "Print a summary after the output")
	cmd.Flags().BoolVar(&opts.AllLines, "all-lines", false, "Include lines without locations in JSON output")
	cmd.Flags().StringVarP(&opts.WorkDir, "work-dir", "C", "", "Directory to run in and resolve paths against")
}

func runQuery(cmd *cobra.Command, g *GlobalOptions, opts *QueryOptions, modeName string, args []string) error {
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
	m, err := modes.Lookup(modeName)
	if err != nil {
		return fmt.Errorf("%w (run 'gooracle modes' to list them)", err)
	}

	dir, err := s.workDir(opts.WorkDir)
	if err != nil {
		return err
	}
	resolver, err := s.resolver(dir)
	if err != nil {
		return err
	}

	q, err := buildQuery(m, args, opts, s, resolver)
	if err != nil {
		return err
	}

	timeout := s.cfg.Oracle.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = opts.Timeout
	}

	toolPath := opts.Oracle
	if toolPath == "" {
		toolPath = s.cfg.Oracle.Path
	}
	tool, err := oracle.LocateTool(toolPath, os.Getenv)
	if err != nil {
		if !opts.DryRun {
			return err
		}
		tool = oracle.ToolNames[0]
	}

	runner := oracle.NewRunner(tool,
		oracle.WithWorkDir(resolver.WorkDir()),
		oracle.WithEnv(s.cfg.Oracle.Env),
		oracle.WithTimeout(timeout),
		oracle.WithLogger(s.logger),
	)

	if opts.DryRun {
		argv, err := runner.Command(m, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), shellJoin(argv))
		return nil
	}

	formatter, err := s.formatter(&opts.OutputOptions, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var scanner *location.Scanner
	if m.Annotate {
		scanner = location.NewScanner(resolver)
	}
	p := newPipeline(scanner, formatter)

	res, runErr := runner.Run(ctx, m, q, func(l *parser.OutputLine) error {
		return p.handle(ctx, l)
	})

	if res != nil {
		meta := output.Metadata{
			Mode:     m.Name,
			Args:     res.Args,
			ExitCode: res.ExitCode,
			Duration: res.Duration,
		}
		if err := p.finish(ctx, meta); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	var exitErr *oracle.ExitError
	if errors.As(runErr, &exitErr) {
		s.logger.Warnw("oracle reported an error", "mode", exitErr.Mode, "status", exitErr.ExitCode)
		ExitCode = ExitOracleError
		return nil
	}
	return runErr
}

// buildQuery splits positional arguments into position and scope according
// to the mode and fills in defaults from flags and configuration.
func buildQuery(m oracle.Mode, args []string, opts *QueryOptions, s *session, r *resolve.Resolver) (oracle.Query, error) {
	q := oracle.Query{Mode: m.Name}

	switch m.Position {
	case oracle.PositionRequired:
		if len(args) == 0 {
			return q, fmt.Errorf("%s: %w (file:#offset or file:line:column)", m.Name, oracle.ErrPositionRequired)
		}
		pos, err := locate(args[0], r)
		if err != nil {
			return q, err
		}
		q.Pos = &pos
		args = args[1:]
	case oracle.PositionOptional:
		if len(args) > 0 {
			if _, err := oracle.ParsePosition(args[0]); err == nil {
				pos, err := locate(args[0], r)
				if err != nil {
					return q, err
				}
				q.Pos = &pos
				args = args[1:]
			}
		}
	}

	switch {
	case len(args) > 0:
		q.Scope = args
	case len(opts.Scope) > 0:
		q.Scope = opts.Scope
	default:
		q.Scope = s.cfg.Oracle.Scope
	}

	q.Args = append(append([]string(nil), s.cfg.Oracle.Args...), opts.Args...)
	return q, nil
}

func locate(arg string, r *resolve.Resolver) (oracle.Position, error) {
	pos, err := oracle.ParsePosition(arg)
	if err != nil {
		return pos, err
	}
	return pos.Locate(r)
}

// shellJoin joins argv for display, quoting arguments that need it.
func shellJoin(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'\\$") {
			parts[i] = strconv.Quote(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
