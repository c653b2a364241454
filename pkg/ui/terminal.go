package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size cannot be determined
const DefaultWidth = 80

var colorEnabled = true

// SetColor turns ANSI colors on or off for all helpers in this package
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintError prints an error message in red
func PrintError(w io.Writer, msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(w, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(w, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(w io.Writer, label string, value string) {
	fmt.Fprintf(w, "%s: %s\n", Cyan(label), Yellow(value))
}

// TerminalWidth returns the column count of stdout, falling back to
// $COLUMNS and then DefaultWidth.
func TerminalWidth() int {
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			return width
		}
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return DefaultWidth
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
