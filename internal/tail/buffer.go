// Package tail keeps the most recent lines of a stream in a fixed-size ring.
package tail

import "strings"

// DefaultCapacity is the number of lines echoed back into a document after a run.
const DefaultCapacity = 3

// Buffer is a ring of the last N lines added to it. The zero value is not usable, call New.
// Buffer is not safe for concurrent use.
type Buffer struct {
	lines    []string
	size     int
	position int
}

// New creates a Buffer holding at most capacity lines. A capacity below 1 is raised to 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{lines: make([]string, capacity)}
}

// Add appends a line, overwriting the oldest one once the buffer is full.
func (b *Buffer) Add(line string) {
	b.lines[b.position] = line
	if b.size < len(b.lines) {
		b.size++
	}
	b.position = (b.position + 1) % len(b.lines)
}

// Len returns the number of lines currently held.
func (b *Buffer) Len() int {
	return b.size
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.lines)
}

// Lines returns the held lines in arrival order.
func (b *Buffer) Lines() []string {
	out := make([]string, 0, b.size)
	start := 0
	if b.size == len(b.lines) {
		start = b.position
	}
	for i := range b.size {
		out = append(out, b.lines[(start+i)%len(b.lines)])
	}
	return out
}

// Text renders the held lines joined by newlines with trailing whitespace removed.
func (b *Buffer) Text() string {
	return strings.TrimRightFunc(strings.Join(b.Lines(), "\n"), isSpace)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
