package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// MaxLineSize is the longest line a source accepts.
const MaxLineSize = 1024 * 1024

// ReaderSource implements LineSource over a single stream.
type ReaderSource struct {
	name    string
	closer  io.Closer
	scanner *bufio.Scanner

	offset  int
	lineNum int
}

// NewReaderSource creates a LineSource reading r. If r is an io.Closer it is
// closed by Close.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	scanner.Split(ScanLines)

	s := &ReaderSource{
		name:    name,
		scanner: scanner,
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next line, or io.EOF at the end of the stream.
func (s *ReaderSource) Next(ctx context.Context) (*OutputLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.name, err)
		}
		return nil, io.EOF
	}

	text := s.scanner.Text()
	s.offset += len(text)
	s.lineNum++

	return &OutputLine{
		Text:    text,
		End:     s.offset,
		Source:  s.name,
		LineNum: s.lineNum,
	}, nil
}

// Close releases resources.
func (s *ReaderSource) Close() error {
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

// ScanLines is a bufio.SplitFunc like bufio.ScanLines that keeps the line
// terminator, so the lengths of all tokens add up to the stream length.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// FileSource implements LineSource for reading saved output files one after
// another. Each file is its own stream: offsets and line numbers restart at
// the beginning of every file. The name Stdin reads standard input.
type FileSource struct {
	files []string
	stdin io.Reader

	current   *ReaderSource
	fileIndex int
}

// NewFileSource creates a LineSource that reads from the given files.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		stdin:     os.Stdin,
		fileIndex: -1,
	}
}

// WithStdin replaces the reader used for the Stdin input.
func (s *FileSource) WithStdin(r io.Reader) *FileSource {
	s.stdin = r
	return s
}

// Next returns the next line.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*OutputLine, error) {
	for {
		if s.current == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		line, err := s.current.Next(ctx)
		if err != io.EOF {
			return line, err
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	if path == Stdin {
		// Standard input is not ours to close.
		s.current = NewReaderSource("<stdin>", io.NopCloser(s.stdin))
		return nil
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening output file %s: %w", path, err)
	}

	s.current = NewReaderSource(path, f)
	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.current != nil {
		err := s.current.Close()
		s.current = nil
		return err
	}
	return nil
}
