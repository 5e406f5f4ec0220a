// Package oracle runs the Go oracle tool and streams its output.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/gooracle/pkg/parser"
)

// DefaultWaitDelay bounds how long Run waits for the tool's output to close
// after the tool is killed.
const DefaultWaitDelay = 2 * time.Second

// LineHandler receives each output line in order. Returning an error stops
// the run and kills the tool.
type LineHandler func(line *parser.OutputLine) error

// Result summarizes a finished run.
type Result struct {
	// Args is the full command line, program first.
	Args []string

	// Lines is the number of output lines delivered.
	Lines int

	// Bytes is the size of the output stream.
	Bytes int

	// ExitCode is the tool's exit status, -1 if it did not exit normally.
	ExitCode int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Runner executes oracle queries.
type Runner struct {
	tool    string
	workDir string
	env     map[string]string
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkDir sets the directory the tool runs in.
func WithWorkDir(dir string) Option {
	return func(r *Runner) {
		r.workDir = dir
	}
}

// WithEnv adds variables to the tool's environment.
func WithEnv(env map[string]string) Option {
	return func(r *Runner) {
		for k, v := range env {
			r.env[k] = v
		}
	}
}

// WithTimeout limits each run. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner for the tool at path.
func NewRunner(tool string, opts ...Option) *Runner {
	r := &Runner{
		tool:   tool,
		env:    make(map[string]string),
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tool returns the path of the tool binary.
func (r *Runner) Tool() string {
	return r.tool
}

// Command returns the full command line for a query, program first.
func (r *Runner) Command(m Mode, q Query) ([]string, error) {
	args, err := m.BuildArgs(q)
	if err != nil {
		return nil, err
	}
	return append([]string{r.tool}, args...), nil
}

// Run executes the query and calls handle for every line of output. The
// tool's stdout and stderr are merged into one stream, in the order the
// tool wrote them.
//
// A non-zero exit is reported as *ExitError after all output has been
// delivered.
func (r *Runner) Run(ctx context.Context, m Mode, q Query, handle LineHandler) (*Result, error) {
	argv, err := r.Command(m, q)
	if err != nil {
		return nil, err
	}
	res := &Result{Args: argv, ExitCode: -1}

	if r.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, r.timeout)
		defer cancelTimeout()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204 -- the tool path is user configuration
	cmd.Dir = r.workDir
	cmd.Env = r.environ()
	cmd.WaitDelay = DefaultWaitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	r.logger.Debugw("running oracle", "mode", m.Name, "args", argv, "dir", r.workDir)
	start := time.Now()

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return nil, fmt.Errorf("starting %s: %w", r.tool, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	source := parser.NewReaderSource(m.Name, pr)
	var readErr error
	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		res.Lines++
		res.Bytes = line.End
		if err := handle(line); err != nil {
			readErr = err
			break
		}
	}

	if readErr != nil {
		// Kill the tool and unblock its writers.
		cancel()
		_, _ = io.Copy(io.Discard, pr)
	}
	err = <-waitErr
	_ = pr.Close()

	res.Duration = time.Since(start)
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	r.logger.Debugw("oracle finished",
		"mode", m.Name,
		"lines", res.Lines,
		"bytes", res.Bytes,
		"exit", res.ExitCode,
		"duration", res.Duration,
	)

	if readErr != nil {
		return res, fmt.Errorf("oracle %s: %w", m.Name, readErr)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("oracle %s: %w", m.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, &ExitError{Mode: m.Name, ExitCode: exitErr.ExitCode()}
		}
		return res, fmt.Errorf("running oracle %s: %w", m.Name, err)
	}

	return res, nil
}

// environ returns nil (inherit) when no variables were added.
func (r *Runner) environ() []string {
	if len(r.env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.env))
	for k := range r.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+r.env[k])
	}
	return env
}
