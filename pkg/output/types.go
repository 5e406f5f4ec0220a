// Package output renders annotated oracle output as text or JSON.
package output

import (
	"time"

	"github.com/ccollicutt/gooracle/pkg/location"
)

// Line is one line of tool output together with the links found in it.
type Line struct {
	// Offset is the stream offset of the first byte of Text.
	Offset int

	// Text is the line as produced, including its terminator.
	Text string

	// Result holds the links in the line, nil when there are none.
	Result *location.Result
}

// Report is what a formatter receives once the stream is complete.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary counts what the scanner saw.
type Summary struct {
	// Lines is the number of lines read.
	Lines int `json:"lines"`

	// Annotated is the number of lines carrying at least one link.
	Annotated int `json:"annotated"`

	// Links is the total number of links.
	Links int `json:"links"`

	// Unresolved is the number of links whose path did not resolve.
	Unresolved int `json:"unresolved"`

	// Bytes is the length of the stream.
	Bytes int64 `json:"bytes"`
}

// Add counts one line.
func (s *Summary) Add(l *Line) {
	s.Lines++
	s.Bytes += int64(len(l.Text))
	if l.Result.Len() == 0 {
		return
	}
	s.Annotated++
	for _, link := range l.Result.Links {
		s.Links++
		if !link.Resolved() {
			s.Unresolved++
		}
	}
}

// Metadata provides context about the run.
type Metadata struct {
	// Mode is the oracle mode, empty for offline scans.
	Mode string `json:"mode,omitempty"`

	// Args is the oracle command line.
	Args []string `json:"args,omitempty"`

	// Sources lists the files scanned offline.
	Sources []string `json:"sources,omitempty"`

	// ExitCode is the oracle's exit status.
	ExitCode int `json:"exit_code"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from a summary and run metadata.
func NewReport(summary Summary, meta Metadata) *Report {
	return &Report{Summary: summary, Metadata: meta}
}

// HasUnresolved returns true if any link failed to resolve.
func (r *Report) HasUnresolved() bool {
	return r.Summary.Unresolved > 0
}
