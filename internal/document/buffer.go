package document

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`^#{1,6}(\s|$)`)
	fencePattern   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})\\s*([A-Za-z0-9_+-]*)")
)

// shellLanguages are fence info strings treated as shell source.
var shellLanguages = map[string]bool{
	"": true, "sh": true, "shell": true, "bash": true, "zsh": true, "console": true,
}

// IsShellLanguage reports whether a fence info string names a shell.
func IsShellLanguage(lang string) bool {
	return shellLanguages[strings.ToLower(lang)]
}

type line struct {
	region Region // without newline
	full   Region // with newline
	scopes []string
}

// Buffer is an in-memory Markdown document.
type Buffer struct {
	text      string
	fileName  string
	selection int
	lines     []line
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithFileName marks the buffer as backed by the given path.
func WithFileName(name string) BufferOption {
	return func(b *Buffer) {
		b.fileName = name
	}
}

// WithSelection places the caret.
func WithSelection(pos int) BufferOption {
	return func(b *Buffer) {
		b.selection = pos
	}
}

// NewBuffer creates a Buffer holding text.
func NewBuffer(text string, opts ...BufferOption) *Buffer {
	b := &Buffer{text: text}
	for _, opt := range opts {
		opt(b)
	}
	b.classify()
	b.selection = b.clamp(b.selection)
	return b
}

// Text returns the whole document.
func (b *Buffer) Text() string {
	return b.text
}

// FileName implements Document.
func (b *Buffer) FileName() string {
	return b.fileName
}

// Size implements Document.
func (b *Buffer) Size() int {
	return len(b.text)
}

// Selection implements Document.
func (b *Buffer) Selection() int {
	return b.selection
}

// SetSelection moves the caret, clamped to the document.
func (b *Buffer) SetSelection(pos int) {
	b.selection = b.clamp(pos)
}

// LineOffset returns the offset of the first byte of a 1-based line number.
func (b *Buffer) LineOffset(n int) (int, error) {
	if n < 1 || n > len(b.lines) {
		return 0, fmt.Errorf("%w: %d", ErrNoSuchLine, n)
	}
	return b.lines[n-1].region.A, nil
}

// LineNumber returns the 1-based line number containing pos.
func (b *Buffer) LineNumber(pos int) int {
	return b.lineIndex(pos) + 1
}

// MatchScope implements Document.
func (b *Buffer) MatchScope(pos int, scope string) bool {
	if len(b.lines) == 0 {
		return false
	}
	for _, s := range b.lines[b.lineIndex(pos)].scopes {
		if s == scope || strings.HasPrefix(s, scope+".") {
			return true
		}
	}
	return false
}

// FullLine implements Document.
func (b *Buffer) FullLine(pos int) Region {
	if len(b.lines) == 0 {
		return Region{}
	}
	return b.lines[b.lineIndex(pos)].full
}

// Find implements Document.
func (b *Buffer) Find(re *regexp.Regexp, from int) (Region, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(b.text) {
		return Region{}, false
	}
	loc := re.FindStringIndex(b.text[from:])
	if loc == nil {
		return Region{}, false
	}
	return Region{A: from + loc[0], B: from + loc[1]}, true
}

// Substr implements Document.
func (b *Buffer) Substr(r Region) string {
	a, e := b.clamp(r.A), b.clamp(r.B)
	if e <= a {
		return ""
	}
	return b.text[a:e]
}

// SplitLines implements Document.
func (b *Buffer) SplitLines(r Region) []Region {
	if len(b.lines) == 0 {
		return nil
	}
	if r.Empty() {
		l := b.lines[b.lineIndex(r.A)]
		pos := min(max(r.A, l.region.A), l.region.B)
		return []Region{{A: pos, B: pos}}
	}

	var out []Region
	for _, l := range b.lines {
		if l.full.B <= r.A {
			continue
		}
		if l.region.A >= r.B {
			break
		}
		seg := Region{A: max(l.region.A, r.A), B: min(l.region.B, r.B)}
		if seg.B < seg.A {
			seg.B = seg.A
		}
		out = append(out, seg)
	}
	return out
}

// Replace implements Document.
func (b *Buffer) Replace(r Region, text string) error {
	if r.A < 0 || r.B > len(b.text) || r.B < r.A {
		return fmt.Errorf("%w: %s in document of size %d", ErrRegionOutOfRange, r, len(b.text))
	}
	b.text = b.text[:r.A] + text + b.text[r.B:]
	b.classify()
	b.selection = b.clamp(b.selection)
	return nil
}

// Blocks returns the regions of every fenced block, fence lines included.
func (b *Buffer) Blocks() []Region {
	var blocks []Region
	var current *Region
	for _, l := range b.lines {
		if slices.Contains(l.scopes, ScopeFencedBlock) {
			if current == nil {
				current = &Region{A: l.full.A, B: l.full.B}
			} else {
				current.B = l.full.B
			}
			continue
		}
		if current != nil {
			blocks = append(blocks, *current)
			current = nil
		}
	}
	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks
}

func (b *Buffer) clamp(pos int) int {
	return min(max(pos, 0), len(b.text))
}

func (b *Buffer) lineIndex(pos int) int {
	pos = b.clamp(pos)
	i := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i].full.B > pos
	})
	if i >= len(b.lines) {
		return len(b.lines) - 1
	}
	return i
}

// classify splits the text into lines and assigns scopes to each one.
func (b *Buffer) classify() {
	b.lines = b.lines[:0]

	var (
		inFence   bool
		fenceMark string
		fenceLang string
	)

	offset := 0
	for _, piece := range strings.SplitAfter(b.text, "\n") {
		full := Region{A: offset, B: offset + len(piece)}
		content := Region{A: offset, B: offset + len(strings.TrimSuffix(piece, "\n"))}
		offset = full.B
		text := b.text[content.A:content.B]

		scopes := []string{ScopeText}
		switch {
		case inFence:
			scopes = append(scopes, fenceScopes(fenceLang)...)
			if closesFence(text, fenceMark) {
				inFence = false
			}
		case fencePattern.MatchString(text):
			m := fencePattern.FindStringSubmatch(text)
			inFence = true
			fenceMark = m[1]
			fenceLang = m[2]
			scopes = append(scopes, fenceScopes(fenceLang)...)
		case headingPattern.MatchString(text):
			scopes = append(scopes, ScopeHeading)
		case strings.HasPrefix(strings.TrimSpace(text), "<!--"):
			scopes = append(scopes, ScopeConfigMarker)
		}

		b.lines = append(b.lines, line{region: content, full: full, scopes: scopes})
	}
}

// closesFence reports whether text is a closing fence for an opening fence of mark.
func closesFence(text, mark string) bool {
	trimmed := strings.TrimSpace(text)
	return len(trimmed) >= len(mark) && strings.Trim(trimmed, mark[:1]) == ""
}

func fenceScopes(lang string) []string {
	scopes := []string{ScopeFencedBlock}
	if IsShellLanguage(lang) {
		scopes = append(scopes, ScopeShellSource)
	}
	return scopes
}
