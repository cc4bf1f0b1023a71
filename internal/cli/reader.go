package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when ctx ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

type line struct {
	err  error
	text string
}

// LineReader reads trimmed lines from an input that may block, such as a
// terminal, without tying the caller to the blocking read. A single
// goroutine scans the input and hands lines over one at a time, so a
// canceled read never loses a line.
type LineReader struct {
	src   io.Reader
	lines chan line
	start sync.Once
}

// NewLineReader returns a reader over src.
func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{src: src, lines: make(chan line)}
}

func (r *LineReader) scan() {
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		r.lines <- line{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		r.lines <- line{err: err}
	}
}

// ReadLine returns the next line with surrounding whitespace removed. A
// final line without a newline is returned like any other; after it every
// call returns io.EOF.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.start.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case l := <-r.lines:
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}
