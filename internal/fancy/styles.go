package fancy

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	CountStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	BlockStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	ParamStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ConfigStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ValidStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)
)

// BlockText styles a block name.
func BlockText(text string) string {
	return BlockStyle.Render(text)
}

// ParamText styles a parameter name.
func ParamText(text string) string {
	return ParamStyle.Render(text)
}

// ConfigText styles a config entry.
func ConfigText(text string) string {
	return ConfigStyle.Render(text)
}

// ValidText styles valid status text (green)
func ValidText(text string) string {
	return ValidStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// PathText styles file paths (gray)
func PathText(text string) string {
	return InfoStyle.Render(text)
}

// SummaryText styles summary information (dark gray)
func SummaryText(text string) string {
	return BranchStyle.Render(text)
}

// CountText styles count numbers (cyan)
func CountText(text string) string {
	return CountStyle.Render(text)
}

// PromptLabel renders the label shown when asking for a parameter value.
func PromptLabel(text string) string {
	return PromptStyle.Render(text)
}

// TruncateString truncates a string if it exceeds maxLength
func TruncateString(s string, maxLength int) string {
	if maxLength < 4 || len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
