// Package results records what a run produced: a full transcript entry appended to a
// writer, and a short summary spliced into the document between output markers.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/atlanticdynamic/coderunner/internal/placeholder"
)

// Entry is one run in the transcript.
type Entry struct {
	// Args are rendered as a JSON object header. Nil or empty means no header.
	Args *placeholder.Values

	// Command is what was executed: the script path in file mode, the joined command otherwise.
	Command string

	// Output is the complete output, newline terminated.
	Output string
}

// Format renders e in transcript form.
func Format(e Entry) (string, error) {
	var sb strings.Builder
	if e.Args.Len() > 0 {
		header, err := json.Marshal(e.Args)
		if err != nil {
			return "", fmt.Errorf("failed to encode arguments: %w", err)
		}
		sb.Write(header)
		sb.WriteString("\n---\n")
	}
	sb.WriteString("> ")
	sb.WriteString(e.Command)
	sb.WriteString("\n\n")
	sb.WriteString(e.Output)
	sb.WriteString("---\n\n\n")
	return sb.String(), nil
}

// Transcript appends entries to a writer. It is safe for concurrent use.
type Transcript struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTranscript(w io.Writer) *Transcript {
	return &Transcript{w: w}
}

// Append writes e unless it has no output, and reports whether anything was written.
func (t *Transcript) Append(e Entry) (bool, error) {
	if e.Output == "" {
		return false, nil
	}

	text, err := Format(e)
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.w, text); err != nil {
		return false, fmt.Errorf("failed to write transcript: %w", err)
	}
	return true, nil
}
