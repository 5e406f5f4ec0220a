// Package location finds "path:row:column: message" source locations in
// lines of oracle output and turns them into link annotations.
package location

import (
	"regexp"
	"strconv"

	"github.com/ccollicutt/gooracle/pkg/resolve"
)

// lineChar matches any character except a line terminator: \n, \r, NEL,
// LS or PS. Matches never cross a terminator.
const lineChar = `[^\n\r\x{85}\x{2028}\x{2029}]`

// Pattern is the shape of a location: ((path):(row):(column)): (message).
// The path capture is greedy, so a path containing colons extends to the
// last ":digits:digits: " on the line.
var Pattern = regexp.MustCompile(`((` + lineChar + `*):(\d+):(\d+)): (` + lineChar + `*)`)

// Resolver turns a path into a file handle, returning nil if the path does
// not name an existing file. Implementations must be synchronous and free of
// side effects.
type Resolver interface {
	Resolve(path string) *resolve.File
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(path string) *resolve.File

// Resolve calls f(path).
func (f ResolverFunc) Resolve(path string) *resolve.File {
	return f(path)
}

// nopResolver resolves nothing.
type nopResolver struct{}

func (nopResolver) Resolve(string) *resolve.File { return nil }

// Link is one location found in a line.
type Link struct {
	// Start and End delimit the highlighted span in stream offsets. The span
	// covers the path only, not the ":row:column" suffix.
	Start int `json:"start"`
	End   int `json:"end"`

	// Path is the path text as printed by the tool.
	Path string `json:"path"`

	// File is the resolved file, or nil when the path did not resolve.
	File *resolve.File `json:"file,omitempty"`

	// Row and Column are 1-based, taken verbatim from the text.
	Row    int `json:"row"`
	Column int `json:"column"`

	// Message is the text after "path:row:column: ".
	Message string `json:"message"`
}

// Resolved reports whether the link points at an existing file.
func (l Link) Resolved() bool {
	return l.File != nil
}

// Result holds the links found in one line, in left-to-right order.
// A line with no links produces a nil *Result.
type Result struct {
	Links []Link `json:"links"`
}

// Len returns the number of links. It is safe to call on a nil Result.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Links)
}

// Single returns the only link when the result holds exactly one.
func (r *Result) Single() (Link, bool) {
	if r.Len() != 1 {
		return Link{}, false
	}
	return r.Links[0], true
}

// Scanner applies Scan with a fixed resolver. It holds no per-line state and
// may be shared by several streams, each supplying its own offsets.
type Scanner struct {
	resolver Resolver
}

// NewScanner creates a Scanner. A nil resolver leaves every link unresolved.
func NewScanner(r Resolver) *Scanner {
	if r == nil {
		r = nopResolver{}
	}
	return &Scanner{resolver: r}
}

// Scan is Scan(line, cumulative, s's resolver).
func (s *Scanner) Scan(line string, cumulative int) *Result {
	return Scan(line, cumulative, s.resolver)
}

// Scan finds every location in line. cumulative is the length of the whole
// stream up to and including line, so the line itself starts at
// cumulative-len(line). It returns nil when the line holds no location.
func Scan(line string, cumulative int, r Resolver) *Result {
	matches := Pattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}
	if r == nil {
		r = nopResolver{}
	}

	base := cumulative - len(line)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		// m holds index pairs for the whole match and groups 1..5.
		path := line[m[4]:m[5]]
		links = append(links, Link{
			Start:   base + m[2],
			End:     base + m[5],
			Path:    path,
			File:    r.Resolve(path),
			Row:     atoi(line[m[6]:m[7]]),
			Column:  atoi(line[m[8]:m[9]]),
			Message: line[m[10]:m[11]],
		})
	}

	return &Result{Links: links}
}

// atoi parses a run of ASCII digits. Values that overflow int yield 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
