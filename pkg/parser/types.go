// Package parser splits tool output into lines and tracks each line's
// position in the stream.
package parser

// OutputLine is one line of tool output.
type OutputLine struct {
	// Text is the line as read, including its trailing newline if any.
	Text string

	// End is the number of bytes read from the stream through the end of
	// this line.
	End int

	// Source names the stream this line came from.
	Source string

	// LineNum is the 1-based line number in the stream.
	LineNum int
}

// Start returns the stream offset of the line's first byte.
func (l *OutputLine) Start() int {
	return l.End - len(l.Text)
}
