package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/gooracle/pkg/config"
)

// Formatter renders tool output as it streams in.
type Formatter interface {
	// WriteLine renders one line of output.
	WriteLine(ctx context.Context, line *Line) error

	// Finish completes the output once the stream has ended.
	Finish(ctx context.Context, report *Report) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Links wraps resolved link spans in terminal hyperlinks (text only).
	Links bool

	// LinkTemplate builds the hyperlink target from {path}, {row} and
	// {column}. Empty means DefaultLinkTemplate.
	LinkTemplate string

	// Summary appends the run summary after the last line.
	Summary bool

	// AllLines emits lines without links too (json only; text always
	// writes every line).
	AllLines bool
}

// New returns the formatter for format writing to w.
func New(format config.OutputFormat, w io.Writer, opts FormatOptions) (Formatter, error) {
	switch format {
	case config.OutputText, "":
		return NewTextFormatter(w, opts), nil
	case config.OutputJSON:
		return NewJSONFormatter(w, opts), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
