package document

import (
	"regexp"
	"strings"
)

// ExpandToScope grows the line at point to every contiguous line carrying scope.
func ExpandToScope(doc Document, point int, scope string) Region {
	region := doc.FullLine(point)

	for start := region.A; start > 0; {
		prev := doc.FullLine(start - 1)
		if !doc.MatchScope(prev.A, scope) {
			break
		}
		region = region.Cover(prev)
		start = prev.A
	}

	size := doc.Size()
	for end := region.B; end < size; {
		next := doc.FullLine(end)
		if next.B <= end || !doc.MatchScope(next.A, scope) {
			break
		}
		region = region.Cover(next)
		end = next.B
	}

	return region
}

// RegionText returns the lines covered by r, each terminated by a newline.
func RegionText(doc Document, r Region) string {
	var sb strings.Builder
	for _, l := range doc.SplitLines(r) {
		sb.WriteString(doc.Substr(l))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// HeaderBefore walks backwards from pos and returns the text of the first line carrying scope.
func HeaderBefore(doc Document, pos int, scope string) (string, bool) {
	for cur := pos - 1; cur >= 0; {
		l := doc.FullLine(cur)
		if doc.MatchScope(l.A, scope) {
			return doc.Substr(l), true
		}
		cur = l.A - 1
	}
	return "", false
}

// OpenMarker matches the opening comment tag `<!--TAG-->`.
func OpenMarker(tag string) *regexp.Regexp {
	return regexp.MustCompile(`<!--\W*` + regexp.QuoteMeta(tag) + `\W*-->`)
}

// CloseMarker matches the closing comment tag `<!--/TAG-->`.
func CloseMarker(tag string) *regexp.Regexp {
	return regexp.MustCompile(`<!--\W*/` + regexp.QuoteMeta(tag) + `\W*-->`)
}

// FindMarkedRegion locates the lines enclosed by the open and close markers for tag,
// searching from offset from. The returned region starts after the open marker's line and
// stops before the newline that precedes the close marker's line.
func FindMarkedRegion(doc Document, tag string, from int) (Region, bool) {
	open, ok := doc.Find(OpenMarker(tag), from)
	if !ok {
		return Region{}, false
	}
	start := doc.FullLine(open.A).B

	closing, ok := doc.Find(CloseMarker(tag), start)
	if !ok {
		return Region{}, false
	}
	end := doc.FullLine(closing.A).A - 1
	if end < start {
		end = start
	}
	return Region{A: start, B: end}, true
}
