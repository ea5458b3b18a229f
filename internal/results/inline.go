package results

import (
	"regexp"

	"github.com/atlanticdynamic/coderunner/internal/document"
)

// DefaultOutputTag names the output markers when settings do not override it.
const DefaultOutputTag = "CodeRunnerOUT"

var fenceLine = regexp.MustCompile("(?m)^```")

// LocateOutput finds the output region that belongs to a block ending at blockEnd: the
// first output markers after the block, provided no other fenced block starts in between.
func LocateOutput(doc document.Document, tag string, blockEnd int) (document.Region, bool) {
	open, ok := doc.Find(document.OpenMarker(tag), blockEnd)
	if !ok {
		return document.Region{}, false
	}

	if fence, ok := doc.Find(fenceLine, blockEnd); ok && fence.A < open.A {
		return document.Region{}, false
	}

	return document.FindMarkedRegion(doc, tag, open.A)
}

// Summary renders the inline output: a link to the script file when there is one, then
// the tail in a fence when there is any output.
func Summary(scriptLink, tail string) string {
	var text string
	if scriptLink != "" {
		text += "* [Script](" + scriptLink + ")\n"
	}
	if tail != "" {
		text += "```\n" + tail + "\n```"
	}
	return text
}

// Splice replaces region with summary. An empty region sits at the start of the closing
// marker line, so the summary gets its own line there.
func Splice(doc document.Document, region document.Region, summary string) error {
	if region.Empty() && summary != "" {
		summary += "\n"
	}
	return doc.Replace(region, summary)
}
