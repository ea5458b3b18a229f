// Package prompt asks the user for parameter values, either with a plain line reader, a
// terminal text input, or from values fixed up front.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/atlanticdynamic/coderunner/internal/fancy"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
)

var _ resolver.Prompter = (*Line)(nil)

// Line reads one line of input per request. An empty line accepts the initial value.
// A single goroutine owns the reader, so a prompt abandoned by its context leaves the next
// line for the following prompt.
type Line struct {
	mu    sync.Mutex
	in    *bufio.Reader
	out   io.Writer
	start sync.Once
	lines chan lineResult
}

func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out, lines: make(chan lineResult)}
}

type lineResult struct {
	text string
	err  error
}

func (l *Line) read() {
	defer close(l.lines)
	for {
		text, err := l.in.ReadString('\n')
		l.lines <- lineResult{text: text, err: err}
		if err != nil {
			return
		}
	}
}

// Prompt implements resolver.Prompter. If ctx ends first the pending read is left to the
// next call.
func (l *Line) Prompt(ctx context.Context, req resolver.Request) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	label := fancy.PromptLabel(req.Label)
	if req.Initial != "" {
		label += " " + fancy.PathText("["+req.Initial+"]")
	}
	if _, err := fmt.Fprintf(l.out, "%s: ", label); err != nil {
		return "", err
	}

	l.start.Do(func() { go l.read() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.lines:
		if !ok {
			return "", fmt.Errorf("%w: %w", ErrAborted, io.EOF)
		}
		text := strings.TrimRight(res.text, "\r\n")
		if res.err != nil {
			if !errors.Is(res.err, io.EOF) || text == "" {
				return "", fmt.Errorf("%w: %w", ErrAborted, res.err)
			}
		}
		if text == "" {
			return req.Initial, nil
		}
		return text, nil
	}
}
