package script

import (
	"strings"
	"unicode"
)

// DefaultName is used when no header precedes a block.
const DefaultName = "Script"

// Name derives a file-friendly script name from a Markdown header: the header is title-cased
// and everything but letters and digits is dropped, so `## Deploy the app` becomes
// `DeployTheApp`.
func Name(header string) string {
	var sb strings.Builder
	prevLetter := false
	for _, r := range header {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			sb.WriteRune(unicode.ToUpper(r))
		case isLetter:
			sb.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			sb.WriteRune(r)
		}
		prevLetter = isLetter
	}
	if sb.Len() == 0 {
		return DefaultName
	}
	return sb.String()
}
