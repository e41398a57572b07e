package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent  = lipgloss.Color("#00B7C3")
	colorValue   = lipgloss.Color("#E5C07B")
	colorSuccess = lipgloss.Color("#98C379")
	colorWarning = lipgloss.Color("#D19A66")
	colorError   = lipgloss.Color("#E06C75")
	colorMuted   = lipgloss.Color("#7F848E")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorValue)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// Output is where the Print helpers write; tests may replace it
var Output io.Writer = os.Stdout

// PrintError prints an error message, with an optional detail
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output, errorStyle.Render(msg))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, successStyle.Render(msg))
}

// PrintInfo prints a label and its value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", labelStyle.Render(label), valueStyle.Render(value))
}

// PrintWarning prints a warning message, with an optional detail
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output, warningStyle.Render(msg))
}
