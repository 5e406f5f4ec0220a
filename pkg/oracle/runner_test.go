//go:build !windows

package oracle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ccollicutt/gooracle/pkg/parser"
)

// fakeOracle writes a shell script standing in for the oracle binary.
func fakeOracle(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oracle")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func collect(lines *[]string) LineHandler {
	return func(line *parser.OutputLine) error {
		*lines = append(*lines, line.Text)
		return nil
	}
}

func describeQuery() (Mode, Query) {
	m, _ := DefaultModes().Lookup("describe")
	return m, Query{Mode: "describe", Pos: &Position{File: "/src/a.go", Start: 10, End: 10}}
}

func TestRunner_Run(t *testing.T) {
	tool := fakeOracle(t, `
echo "args: $*"
echo "/src/a.go:1:2: first"
echo "note on stderr" >&2
printf "/src/b.go:3:4: last"`)

	m, q := describeQuery()
	var lines []string

	res, err := NewRunner(tool).Run(context.Background(), m, q, collect(&lines))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"args: -pos=/src/a.go:#10 describe\n",
		"/src/a.go:1:2: first\n",
		"note on stderr\n",
		"/src/b.go:3:4: last",
	}, lines)
	assert.Equal(t, 4, res.Lines)
	assert.Equal(t, len(strings.Join(lines, "")), res.Bytes)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{tool, "-pos=/src/a.go:#10", "describe"}, res.Args)
}

func TestRunner_ExitError(t *testing.T) {
	tool := fakeOracle(t, `
echo "oracle: no identifier here"
exit 3`)

	m, q := describeQuery()
	var lines []string

	res, err := NewRunner(tool).Run(context.Background(), m, q, collect(&lines))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, "describe", exitErr.Mode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, []string{"oracle: no identifier here\n"}, lines)
}

func TestRunner_WorkDirAndEnv(t *testing.T) {
	tool := fakeOracle(t, `
pwd
echo "$GOORACLE_TEST_VAR"`)
	dir := t.TempDir()

	m, q := describeQuery()
	var lines []string

	r := NewRunner(tool,
		WithWorkDir(dir),
		WithEnv(map[string]string{"GOORACLE_TEST_VAR": "from-config"}),
	)
	_, err := r.Run(context.Background(), m, q, collect(&lines))
	require.NoError(t, err)

	require.Len(t, lines, 2)
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(strings.TrimSpace(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
	assert.Equal(t, "from-config\n", lines[1])
}

func TestRunner_HandlerErrorStopsTool(t *testing.T) {
	tool := fakeOracle(t, `
echo "/src/a.go:1:1: one"
echo "/src/a.go:2:1: two"
exec sleep 30`)

	m, q := describeQuery()
	stop := errors.New("stop")
	calls := 0

	start := time.Now()
	_, err := NewRunner(tool).Run(context.Background(), m, q, func(*parser.OutputLine) error {
		calls++
		return stop
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunner_Timeout(t *testing.T) {
	tool := fakeOracle(t, `exec sleep 30`)

	m, q := describeQuery()
	var lines []string

	start := time.Now()
	_, err := NewRunner(tool, WithTimeout(100*time.Millisecond)).Run(context.Background(), m, q, collect(&lines))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunner_MissingTool(t *testing.T) {
	m, q := describeQuery()

	_, err := NewRunner(filepath.Join(t.TempDir(), "missing")).Run(context.Background(), m, q, collect(new([]string)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting")
}

func TestRunner_PositionRequired(t *testing.T) {
	m, _ := DefaultModes().Lookup("callers")

	_, err := NewRunner("oracle").Run(context.Background(), m, Query{Mode: "callers"}, collect(new([]string)))

	require.ErrorIs(t, err, ErrPositionRequired)
}

func TestRunner_Logs(t *testing.T) {
	tool := fakeOracle(t, `echo ok`)
	core, logs := observer.New(zapcore.DebugLevel)

	m, q := describeQuery()
	_, err := NewRunner(tool, WithLogger(zap.New(core).Sugar())).Run(context.Background(), m, q, collect(new([]string)))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("running oracle").Len())
	finished := logs.FilterMessage("oracle finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(1), finished[0].ContextMap()["lines"])
}

func TestRunner_Command(t *testing.T) {
	m := Mode{Name: "referrers", Position: PositionRequired, Args: []string{"-format=plain"}}
	q := Query{
		Pos:   &Position{File: "/src/a.go", Start: 4, End: 9},
		Scope: []string{"example.com/app/..."},
		Args:  []string{"-reflect"},
	}

	argv, err := NewRunner("/usr/bin/oracle").Command(m, q)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/usr/bin/oracle",
		"-pos=/src/a.go:#4,#9",
		"-format=plain",
		"-reflect",
		"referrers",
		"example.com/app/...",
	}, argv)
}
