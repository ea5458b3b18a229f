// Package placeholder finds and substitutes `$name` and `${name}` placeholders.
//
// The placeholder language is deliberately small: an identifier is `[_A-Za-z][_A-Za-z0-9]*`,
// `$$` stands for a literal dollar sign, and any other use of `$` is an invalid placeholder.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern groups: 1 escaped, 2 named, 3 braced, 4 invalid (always empty)
var pattern = regexp.MustCompile(`\$(?:(\$)|([_A-Za-z][_A-Za-z0-9]*)|\{([_A-Za-z][_A-Za-z0-9]*)\}|())`)

// LookupFunc returns the value for a placeholder name and whether it is defined.
type LookupFunc func(name string) (string, bool)

// MapLookup adapts a plain map to a LookupFunc.
func MapLookup(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// Scan returns the distinct placeholder names used in text, in order of first occurrence.
func Scan(text string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		name := nameOf(text, m)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Substitute replaces every placeholder in text using lookup. It fails on the first undefined
// name with ErrUndefinedReference, or on a malformed placeholder with ErrInvalidPlaceholder.
func Substitute(text string, lookup LookupFunc) (string, error) {
	return substitute(text, lookup, true)
}

// SafeSubstitute is like Substitute but leaves undefined and malformed placeholders untouched.
func SafeSubstitute(text string, lookup LookupFunc) string {
	out, _ := substitute(text, lookup, false)
	return out
}

func substitute(text string, lookup LookupFunc, strict bool) (string, error) {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0:
			sb.WriteByte('$')
		case m[4] >= 0 || m[6] >= 0:
			name := nameOf(text, m)
			value, ok := lookup(name)
			if !ok {
				if strict {
					return "", fmt.Errorf("%w: %s", ErrUndefinedReference, name)
				}
				sb.WriteString(text[m[0]:m[1]])
				continue
			}
			sb.WriteString(value)
		default:
			if strict {
				return "", fmt.Errorf("%w at offset %d", ErrInvalidPlaceholder, m[0])
			}
			sb.WriteString(text[m[0]:m[1]])
		}
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

func nameOf(text string, m []int) string {
	switch {
	case m[4] >= 0:
		return text[m[4]:m[5]]
	case m[6] >= 0:
		return text[m[6]:m[7]]
	}
	return ""
}
