// Package document models the text a script block lives in.
//
// The pipeline only talks to the Document interface. Buffer is an in-memory Markdown backend
// that classifies each line into editor-style scope names; File adds a path on disk and Save.
package document

import (
	"fmt"
	"regexp"
)

// Scope names assigned by the Markdown backend.
const (
	ScopeText         = "text.html.markdown"
	ScopeFencedBlock  = "markup.raw.block.fenced.markdown"
	ScopeHeading      = "markup.heading.markdown"
	ScopeShellSource  = "source.shell"
	ScopeConfigMarker = "comment.block.html"
)

// Region is a half-open byte range [A, B) within a document.
type Region struct {
	A int
	B int
}

// Empty reports whether the region covers no bytes.
func (r Region) Empty() bool {
	return r.B <= r.A
}

// Len returns the number of bytes covered.
func (r Region) Len() int {
	if r.Empty() {
		return 0
	}
	return r.B - r.A
}

// Cover returns the smallest region containing both r and other.
func (r Region) Cover(other Region) Region {
	return Region{A: min(r.A, other.A), B: max(r.B, other.B)}
}

func (r Region) String() string {
	return fmt.Sprintf("(%d, %d)", r.A, r.B)
}

// Document is the editing surface a run reads from and writes its output summary into.
type Document interface {
	// FileName returns the absolute path backing the document, or "" for an unsaved buffer.
	FileName() string

	// Size returns the length of the document text in bytes.
	Size() int

	// Selection returns the caret position.
	Selection() int

	// MatchScope reports whether the line at pos carries the given scope.
	MatchScope(pos int, scope string) bool

	// FullLine returns the line containing pos, including its trailing newline.
	FullLine(pos int) Region

	// Find returns the first match of re at or after from.
	Find(re *regexp.Regexp, from int) (Region, bool)

	// Substr returns the text covered by r.
	Substr(r Region) string

	// SplitLines returns the lines intersecting r, without their newlines.
	SplitLines(r Region) []Region

	// Replace swaps the text covered by r for text.
	Replace(r Region, text string) error
}
