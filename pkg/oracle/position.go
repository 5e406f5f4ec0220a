package oracle

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-git/go-billy/v5/util"

	"github.com/ccollicutt/gooracle/pkg/resolve"
)

// Position is a point or byte range in a Go source file.
type Position struct {
	// File is the source file path.
	File string

	// Start and End are byte offsets. Start is -1 until the offset is known.
	// End equals Start for a point.
	Start int
	End   int

	// Line and Column are the 1-based position the offset was computed
	// from, zero when the position was given as offsets.
	Line   int
	Column int
}

var (
	offsetPosPattern  = regexp.MustCompile(`^(.+):#(\d+)(?:,#(\d+))?$`)
	lineColPosPattern = regexp.MustCompile(`^(.+):(\d+):(\d+)$`)
	linePosPattern    = regexp.MustCompile(`^(.+):(\d+)$`)
)

// ParsePosition parses "file:#offset", "file:#start,#end", "file:line" or
// "file:line:column". Line and column forms need Locate before use.
func ParsePosition(s string) (Position, error) {
	if m := offsetPosPattern.FindStringSubmatch(s); m != nil {
		start, err := strconv.Atoi(m[2])
		if err != nil {
			return Position{}, fmt.Errorf("%w %q: %v", ErrInvalidPosition, s, err)
		}
		end := start
		if m[3] != "" {
			if end, err = strconv.Atoi(m[3]); err != nil {
				return Position{}, fmt.Errorf("%w %q: %v", ErrInvalidPosition, s, err)
			}
			if end < start {
				return Position{}, fmt.Errorf("%w %q: end before start", ErrInvalidPosition, s)
			}
		}
		return Position{File: m[1], Start: start, End: end}, nil
	}

	m := lineColPosPattern.FindStringSubmatch(s)
	if m == nil {
		if m = linePosPattern.FindStringSubmatch(s); m != nil {
			m = append(m, "1")
		}
	}
	if m != nil {
		line, err := strconv.Atoi(m[2])
		if err != nil || line < 1 {
			return Position{}, fmt.Errorf("%w %q: bad line", ErrInvalidPosition, s)
		}
		col, err := strconv.Atoi(m[3])
		if err != nil || col < 1 {
			return Position{}, fmt.Errorf("%w %q: bad column", ErrInvalidPosition, s)
		}
		return Position{File: m[1], Start: -1, End: -1, Line: line, Column: col}, nil
	}

	return Position{}, fmt.Errorf("%w %q (want file:#offset, file:#start,#end or file:line:column)", ErrInvalidPosition, s)
}

// HasOffset reports whether the byte offset is known.
func (p Position) HasOffset() bool {
	return p.Start >= 0
}

// String formats the position as the oracle's -pos flag value.
func (p Position) String() string {
	if !p.HasOffset() {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	if p.End > p.Start {
		return fmt.Sprintf("%s:#%d,#%d", p.File, p.Start, p.End)
	}
	return fmt.Sprintf("%s:#%d", p.File, p.Start)
}

// Locate makes the file path absolute and, for line/column positions,
// computes the byte offset by reading the file through r. Offsets are
// checked against the file contents.
func (p Position) Locate(r *resolve.Resolver) (Position, error) {
	p.File = r.Abs(p.File)

	src, err := util.ReadFile(r.Filesystem(), p.File)
	if err != nil {
		return Position{}, fmt.Errorf("%w: reading %s: %v", ErrInvalidPosition, p.File, err)
	}

	if p.HasOffset() {
		if p.End > len(src) {
			return Position{}, fmt.Errorf("%w: offset %d beyond end of %s (%d bytes)", ErrInvalidPosition, p.End, p.File, len(src))
		}
		return p, nil
	}

	offset, err := lineColumnOffset(src, p.Line, p.Column)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrInvalidPosition, p.File, err)
	}
	p.Start, p.End = offset, offset
	return p, nil
}

// lineColumnOffset converts a 1-based line and byte column to an offset.
// The column may point one past the last byte of the line.
func lineColumnOffset(src []byte, line, col int) (int, error) {
	start := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(src[start:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d out of range", line)
		}
		start += i + 1
	}

	end := len(src)
	if i := bytes.IndexByte(src[start:], '\n'); i >= 0 {
		end = start + i
	}

	offset := start + col - 1
	if offset > end {
		return 0, fmt.Errorf("column %d out of range on line %d", col, line)
	}
	return offset, nil
}
