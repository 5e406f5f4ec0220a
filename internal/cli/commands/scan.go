package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gooracle/pkg/location"
	"github.com/ccollicutt/gooracle/pkg/output"
	"github.com/ccollicutt/gooracle/pkg/parser"
)

// ScanOptions holds command-line options for the scan command.
type ScanOptions struct {
	OutputOptions
}

// NewScanCommand creates the scan command.
func NewScanCommand(g *GlobalOptions) *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [file|glob|-]...",
		Short: "Annotate saved oracle output",
		Long: `Scan saved oracle output for "file:line:column: message" locations and
print it the way query does. With no arguments, or with "-", standard input
is read. Each file is scanned as its own stream.

Example:
  oracle -pos=main.go:#120 referrers ./... | gooracle scan
  gooracle scan -o json --summary out/*.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, opts, args)
		},
	}

	addOutputFlags(cmd, &opts.OutputOptions)
	return cmd
}

func runScan(cmd *cobra.Command, g *GlobalOptions, opts *ScanOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(ctx, g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{parser.Stdin}
	}
	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}

	dir, err := s.workDir(opts.WorkDir)
	if err != nil {
		return err
	}
	resolver, err := s.resolver(dir)
	if err != nil {
		return err
	}

	formatter, err := s.formatter(&opts.OutputOptions, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	p := newPipeline(location.NewScanner(resolver), formatter)

	source := parser.NewFileSource(files).WithStdin(cmd.InOrStdin())
	defer source.Close()

	s.logger.Debugw("scanning", "files", files, "dir", resolver.WorkDir())

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := p.handle(ctx, line); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if err := p.finish(ctx, output.Metadata{Sources: files}); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
