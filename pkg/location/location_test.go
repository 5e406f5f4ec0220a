package location

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/ccollicutt/gooracle/pkg/resolve"
)

// resolveAll resolves every path to a handle with that path.
var resolveAll = ResolverFunc(func(path string) *resolve.File {
	return &resolve.File{Path: path}
})

func TestScan_NoMatch(t *testing.T) {
	lines := []string{
		"",
		"\n",
		"hello world",
		"main.go:12: missing column",
		"main.go:12:3:no space after colon",
		"main.go:x:3: row is not a number",
		"main.go:12:3",
		"oracle: no identifier here",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			assert.Nil(t, Scan(line, len(line), resolveAll))
		})
	}
}

func TestScan_SingleMatch(t *testing.T) {
	line := "/a/b/c.go:10:5: undefined: foo"

	result := Scan(line, len(line), resolveAll)
	require.NotNil(t, result)

	link, ok := result.Single()
	require.True(t, ok)
	assert.Equal(t, 0, link.Start)
	assert.Equal(t, len("/a/b/c.go"), link.End)
	assert.Equal(t, "/a/b/c.go", line[link.Start:link.End])
	assert.Equal(t, "/a/b/c.go", link.Path)
	assert.Equal(t, 10, link.Row)
	assert.Equal(t, 5, link.Column)
	assert.Equal(t, "undefined: foo", link.Message)
	assert.True(t, link.Resolved())
}

func TestScan_CumulativeOffset(t *testing.T) {
	line := "x.go:1:2: abcdefghij"
	require.Len(t, line, 20)

	result := Scan(line, 100, resolveAll)

	link, ok := result.Single()
	require.True(t, ok)
	assert.Equal(t, 80, link.Start)
	assert.Equal(t, 84, link.End)
}

func TestScan_GreedyPathOnOneLine(t *testing.T) {
	line := "a.go:1:1: x b.go:2:2: y"

	result := Scan(line, len(line), resolveAll)

	link, ok := result.Single()
	require.True(t, ok)
	assert.Equal(t, "a.go:1:1: x b.go", link.Path)
	assert.Equal(t, 2, link.Row)
	assert.Equal(t, 2, link.Column)
	assert.Equal(t, "y", link.Message)
	assert.Equal(t, 0, link.Start)
	assert.Equal(t, len("a.go:1:1: x b.go"), link.End)
}

func TestScan_MultipleMatches(t *testing.T) {
	tests := []struct {
		name       string
		sep        string
		wantStarts []int
	}{
		{"newline", "\n", []int{0, 12}},
		{"carriage return", "\r", []int{0, 12}},
		{"next line", "\u0085", []int{0, 13}},
		{"line separator", "\u2028", []int{0, 14}},
		{"paragraph separator", "\u2029", []int{0, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := "a.go:1:1: x" + tt.sep + "b.go:2:2: y"

			result := Scan(line, len(line), resolveAll)
			require.Equal(t, 2, result.Len())

			_, ok := result.Single()
			assert.False(t, ok)

			first, second := result.Links[0], result.Links[1]
			assert.Equal(t, "a.go", first.Path)
			assert.Equal(t, 1, first.Row)
			assert.Equal(t, 1, first.Column)
			assert.Equal(t, "x", first.Message)
			assert.Equal(t, tt.wantStarts[0], first.Start)

			assert.Equal(t, "b.go", second.Path)
			assert.Equal(t, 2, second.Row)
			assert.Equal(t, 2, second.Column)
			assert.Equal(t, "y", second.Message)
			assert.Equal(t, tt.wantStarts[1], second.Start)
			assert.Equal(t, tt.wantStarts[1]+len("b.go"), second.End)

			assert.LessOrEqual(t, first.End, second.Start)
		})
	}
}

func TestScan_PathShapes(t *testing.T) {
	tests := []struct {
		line    string
		path    string
		row     int
		column  int
		message string
	}{
		{`C:\proj\a.go:3:4: msg`, `C:\proj\a.go`, 3, 4, "msg"},
		{"dir:1:2/x.go:5:6: m", "dir:1:2/x.go", 5, 6, "m"},
		{"a.go:1:2:3:4: m", "a.go:1:2", 3, 4, "m"},
		{"  at a.go:1:2: m", "  at a.go", 1, 2, "m"},
		{"a.go:1:2: ", "a.go", 1, 2, ""},
		{":1:2: no path", "", 1, 2, "no path"},
		{"a.go:007:010: padded", "a.go", 7, 10, "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			result := Scan(tt.line, len(tt.line), resolveAll)

			link, ok := result.Single()
			require.True(t, ok)
			assert.Equal(t, tt.path, link.Path)
			assert.Equal(t, tt.row, link.Row)
			assert.Equal(t, tt.column, link.Column)
			assert.Equal(t, tt.message, link.Message)
			assert.Equal(t, 0, link.Start)
			assert.Equal(t, len(tt.path), link.End)
		})
	}
}

func TestScan_Overflow(t *testing.T) {
	line := "a.go:99999999999999999999:3: m"

	link, ok := Scan(line, len(line), resolveAll).Single()
	require.True(t, ok)
	assert.Equal(t, 0, link.Row)
	assert.Equal(t, 3, link.Column)
}

func TestScan_UnresolvedPath(t *testing.T) {
	line := "/does/not/exist.go:1:1: gone"
	none := ResolverFunc(func(string) *resolve.File { return nil })

	result := Scan(line, len(line), none)

	link, ok := result.Single()
	require.True(t, ok)
	assert.Nil(t, link.File)
	assert.False(t, link.Resolved())
	assert.Equal(t, "/does/not/exist.go", link.Path)
}

func TestScan_NilResolver(t *testing.T) {
	line := "a.go:1:1: m"

	link, ok := Scan(line, len(line), nil).Single()
	require.True(t, ok)
	assert.False(t, link.Resolved())
}

func TestScan_ResolverSeesPath(t *testing.T) {
	var seen []string
	r := ResolverFunc(func(path string) *resolve.File {
		seen = append(seen, path)
		return nil
	})
	line := "one.go:1:1: a\ntwo.go:2:2: b"

	Scan(line, len(line), r)

	assert.Equal(t, []string{"one.go", "two.go"}, seen)
}

func TestScan_Idempotent(t *testing.T) {
	s := NewScanner(resolveAll)
	line := "a.go:1:1: x\nb.go:2:2: y\n"

	first := s.Scan(line, 500)
	second := s.Scan(line, 500)

	assert.Equal(t, first, second)
}

func TestResult_NilSafe(t *testing.T) {
	var r *Result

	assert.Equal(t, 0, r.Len())
	_, ok := r.Single()
	assert.False(t, ok)
}

func TestNewScanner_NilResolver(t *testing.T) {
	s := NewScanner(nil)
	line := "a.go:1:1: m"

	link, ok := s.Scan(line, len(line)).Single()
	require.True(t, ok)
	assert.Nil(t, link.File)
}

func TestScan_Transcript(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "referrers.txtar"))
	require.NoError(t, err)

	sections := map[string]string{}
	for _, f := range ar.Files {
		sections[f.Name] = string(f.Data)
	}

	fs := memfs.New()
	for _, p := range strings.Fields(sections["resolved"]) {
		require.NoError(t, util.WriteFile(fs, p, nil, 0o644))
	}
	resolver := resolve.New(fs, "/src/app")
	s := NewScanner(resolver)

	var got []string
	var resolved []bool
	cumulative := 0
	for _, line := range strings.SplitAfter(sections["output"], "\n") {
		if line == "" {
			continue
		}
		cumulative += len(line)
		for _, l := range s.Scan(line, cumulative).Links {
			got = append(got, fmt.Sprintf("%d %d %d %d %s", l.Start, l.End, l.Row, l.Column, l.Path))
			resolved = append(resolved, l.Resolved())
		}
	}

	var want []string
	sc := bufio.NewScanner(strings.NewReader(sections["want"]))
	for sc.Scan() {
		want = append(want, sc.Text())
	}

	assert.Equal(t, want, got)
	assert.Equal(t, []bool{true, true, false, true}, resolved)
	assert.Equal(t, len(sections["output"]), cumulative)
}
