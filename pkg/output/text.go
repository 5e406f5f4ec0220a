package output

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ccollicutt/gooracle/pkg/config"
	"github.com/ccollicutt/gooracle/pkg/location"
)

// DefaultLinkTemplate opens the file itself.
const DefaultLinkTemplate = "file://{path}"

// OSC 8 hyperlink delimiters.
const (
	linkOpen  = "\x1b]8;;"
	linkClose = "\x1b\\"
)

// TextFormatter writes lines as received, wrapping resolved link spans in
// terminal hyperlinks when enabled.
type TextFormatter struct {
	w    io.Writer
	opts FormatOptions

	// unterminated is set when the last line had no line terminator.
	unterminated bool
}

// NewTextFormatter creates a new text formatter writing to w.
func NewTextFormatter(w io.Writer, opts FormatOptions) *TextFormatter {
	if opts.LinkTemplate == "" {
		opts.LinkTemplate = DefaultLinkTemplate
	}
	return &TextFormatter{w: w, opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// WriteLine renders one line.
func (f *TextFormatter) WriteLine(_ context.Context, line *Line) error {
	text := line.Text
	if f.opts.Links && line.Result.Len() > 0 {
		text = f.decorate(line)
	}
	f.unterminated = !strings.HasSuffix(line.Text, "\n")

	_, err := io.WriteString(f.w, text)
	return err
}

// decorate wraps every resolved link span of line in an OSC 8 hyperlink.
func (f *TextFormatter) decorate(line *Line) string {
	var b strings.Builder
	pos := 0
	for _, link := range line.Result.Links {
		start, end := link.Start-line.Offset, link.End-line.Offset
		if !link.Resolved() || start < pos || end > len(line.Text) {
			continue
		}
		b.WriteString(line.Text[pos:start])
		b.WriteString(linkOpen)
		b.WriteString(f.target(link))
		b.WriteString(linkClose)
		b.WriteString(line.Text[start:end])
		b.WriteString(linkOpen)
		b.WriteString(linkClose)
		pos = end
	}
	b.WriteString(line.Text[pos:])
	return b.String()
}

// target expands the link template for link.
func (f *TextFormatter) target(link location.Link) string {
	path := (&url.URL{Path: link.File.Path}).EscapedPath()
	return strings.NewReplacer(
		"{path}", path,
		"{row}", strconv.Itoa(link.Row),
		"{column}", strconv.Itoa(link.Column),
	).Replace(f.opts.LinkTemplate)
}

// Finish writes the summary when requested.
func (f *TextFormatter) Finish(_ context.Context, report *Report) error {
	if !f.opts.Summary {
		return nil
	}
	if f.unterminated {
		fmt.Fprintln(f.w)
	}

	s := report.Summary
	_, err := fmt.Fprintf(f.w, "---\nSummary: %d lines, %d annotated, %d links (%d unresolved)\n",
		s.Lines, s.Annotated, s.Links, s.Unresolved)
	return err
}

// LinksEnabled decides whether text output to w carries hyperlinks. In auto
// mode only terminals get them.
func LinksEnabled(mode config.LinkMode, w io.Writer) bool {
	switch mode {
	case config.LinksAlways:
		return true
	case config.LinksNever:
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
