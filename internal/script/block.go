// Package script turns the text of a fenced block into something a shell can run: either a
// single joined command line or an executable file under the document's run directory.
package script

import (
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/placeholder"
)

// DirectiveLine replaces a `#<path>` working-directory directive in the script body.
const DirectiveLine = "cd ${working_dir};"

// Block is a fenced block with its fences removed.
type Block struct {
	// Lines of the body, with the directive (if any) already rewritten to DirectiveLine.
	Lines []string

	// WorkingDir is the path named by a leading `#<path>` directive, or "".
	WorkingDir string
}

// Parse strips the opening shell fence and the closing fence from raw, then looks for a
// working-directory directive on the first remaining line.
func Parse(raw string) Block {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return Block{}
	}

	if isOpeningFence(lines[0]) {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimRight(lines[len(lines)-1], " \t") == "```" {
		lines = lines[:len(lines)-1]
	}

	b := Block{Lines: lines}
	if len(lines) > 0 {
		if dir, ok := directive(lines[0]); ok {
			b.WorkingDir = dir
			b.Lines[0] = DirectiveLine
		}
	}
	return b
}

// Code returns the body as it appears in a script file.
func (b Block) Code() string {
	return strings.Join(b.Lines, "\n")
}

// Joined returns the body as a single command line.
func (b Block) Joined() string {
	return strings.Join(b.Lines, " ")
}

// Command returns the joined form with resolved arguments substituted. Names without a
// value are left for the shell to expand.
func (b Block) Command(args *placeholder.Values) string {
	return placeholder.SafeSubstitute(b.Joined(), args.Lookup())
}

// Parameters returns the placeholder names used in the body, in order of first use.
func (b Block) Parameters() []string {
	return placeholder.Scan(b.Code())
}

func splitLines(raw string) []string {
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func isOpeningFence(line string) bool {
	lang, ok := strings.CutPrefix(line, "```")
	if !ok {
		return false
	}
	return document.IsShellLanguage(strings.TrimSpace(lang))
}

// directive reports the path of a `#<path>` line. A shebang or a comment (`# text`) is not
// a directive.
func directive(line string) (string, bool) {
	path, ok := strings.CutPrefix(line, "#")
	if !ok || path == "" {
		return "", false
	}
	switch path[0] {
	case ' ', '\t', '!', '#':
		return "", false
	}
	return strings.TrimSpace(path), true
}
