package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

// SetOutput redirects every helper in this package to w.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

// Output returns the writer the helpers print to.
func Output() io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	return out
}

func printLine(s string) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(out, s)
}

// IsTerminal returns true if stdin is connected to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// Respects NO_COLOR (https://no-color.org/) and CLICOLOR=0.
func ShouldUseColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("CLICOLOR") != "0"
}

// DisableColor strips colors from every lipgloss style rendered afterwards.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var (
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"})
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC6600", Dark: "#FFAA00"})
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF0000"})
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"})
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"})
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	valueStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})
	dividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"})
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"})
)

// Success prints a success message with checkmark
func Success(msg string) {
	printLine(successStyle.Render("✔") + " " + msg)
}

// Info prints an info message
func Info(msg string) {
	printLine(infoStyle.Render("ℹ") + " " + msg)
}

// Warn prints a warning message
func Warn(msg string) {
	printLine(warningStyle.Render("⚠") + " " + msg)
}

// Error prints an error message
func Error(msg string) {
	printLine(errorStyle.Render("✖") + " " + msg)
}

// Header prints a styled header
func Header(text string) {
	printLine(headerStyle.Render(text))
}

// Highlight prints a label and a highlighted value
func Highlight(label, value string) {
	printLine("  " + labelStyle.Render(label+":") + " " + valueStyle.Render(value))
}

// Divider prints a styled divider
func Divider() {
	printLine(dividerStyle.Render(strings.Repeat("─", 50)))
}

// Key renders a key name the way the help lines show it.
func Key(name string) string {
	return highlightStyle.Render(name)
}

// Dim renders text in the muted label color.
func Dim(text string) string {
	return labelStyle.Render(text)
}
