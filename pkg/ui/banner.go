package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Center pads text with spaces on both sides to width columns. The odd
// leftover space goes to the right. Text wider than width is returned as is.
func Center(text string, width int) string {
	pad := width - utf8.RuneCountInString(text)
	if pad <= 0 {
		return text
	}
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}

// PrintBanner prints the closing instructions framed by slash rules
func PrintBanner(w io.Writer, width int, dir string) {
	if width < 1 {
		width = DefaultWidth
	}
	rule := strings.Repeat("/", width)
	msg := fmt.Sprintf("check out %s and open index.html in chrome to see the image", dir)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, Center(msg, width))
	fmt.Fprintln(w, rule)
}
