package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ccollicutt/gooracle/internal/logging"
	"github.com/ccollicutt/gooracle/pkg/config"
	"github.com/ccollicutt/gooracle/pkg/location"
	"github.com/ccollicutt/gooracle/pkg/output"
	"github.com/ccollicutt/gooracle/pkg/parser"
	"github.com/ccollicutt/gooracle/pkg/resolve"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Exit codes.
const (
	ExitOK          = 0
	ExitOracleError = 1
	ExitError       = 2
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
}

// OutputOptions holds the rendering flags shared by query and scan.
type OutputOptions struct {
	Output   string
	Links    string
	Summary  bool
	AllLines bool
	WorkDir  string
}

// session is the configuration and logger a command runs with.
type session struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

func newSession(ctx context.Context, g *GlobalOptions, stderr io.Writer) (*session, error) {
	cfg, err := config.Find(ctx, g.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	logger, err := logging.New(level, zapcore.AddSync(stderr))
	if err != nil {
		return nil, err
	}

	if cfg.Path() != "" {
		logger.Debugw("configuration loaded", "path", cfg.Path())
	} else {
		logger.Debug("no configuration file found, using defaults")
	}

	return &session{cfg: cfg, logger: logger}, nil
}

// workDir picks the directory queries run in and relative paths resolve
// against.
func (s *session) workDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if s.cfg.Oracle.WorkDir != "" {
		return s.cfg.Oracle.WorkDir, nil
	}
	return os.Getwd()
}

// resolver builds the file resolver for dir.
func (s *session) resolver(dir string) (*resolve.Resolver, error) {
	r, err := resolve.NewOS(dir)
	if err != nil {
		return nil, fmt.Errorf("work directory %s: %w", dir, err)
	}
	return r, nil
}

// formatter builds the output formatter from flags and configuration.
func (s *session) formatter(opts *OutputOptions, w io.Writer) (output.Formatter, error) {
	format := s.cfg.Output.Format
	if opts.Output != "" {
		format = config.OutputFormat(opts.Output)
	}
	links := s.cfg.Output.Links
	if opts.Links != "" {
		links = config.LinkMode(opts.Links)
		switch links {
		case config.LinksAuto, config.LinksAlways, config.LinksNever:
		default:
			return nil, fmt.Errorf("invalid --links %q (use auto, always, or never)", opts.Links)
		}
	}

	f, err := output.New(format, w, output.FormatOptions{
		Links:        output.LinksEnabled(links, w),
		LinkTemplate: s.cfg.Output.LinkTemplate,
		Summary:      opts.Summary,
		AllLines:     opts.AllLines,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (use text or json)", err)
	}
	return f, nil
}

// pipeline scans lines for locations and hands them to a formatter.
type pipeline struct {
	scanner   *location.Scanner
	formatter output.Formatter
	summary   output.Summary
}

// newPipeline creates a pipeline. A nil scanner passes lines through without
// annotations.
func newPipeline(scanner *location.Scanner, f output.Formatter) *pipeline {
	return &pipeline{scanner: scanner, formatter: f}
}

// handle processes one line of output.
func (p *pipeline) handle(ctx context.Context, l *parser.OutputLine) error {
	line := &output.Line{Offset: l.Start(), Text: l.Text}
	if p.scanner != nil {
		line.Result = p.scanner.Scan(l.Text, l.End)
	}
	p.summary.Add(line)
	return p.formatter.WriteLine(ctx, line)
}

// finish writes the trailing summary.
func (p *pipeline) finish(ctx context.Context, meta output.Metadata) error {
	return p.formatter.Finish(ctx, output.NewReport(p.summary, meta))
}
