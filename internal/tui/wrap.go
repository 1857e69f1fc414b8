// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText word-wraps plain text to the given display width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out strings.Builder
	lineWidth := 0
	for i, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		if i > 0 {
			if lineWidth+1+w > width {
				out.WriteByte('\n')
				lineWidth = 0
			} else {
				out.WriteByte(' ')
				lineWidth++
			}
		}
		out.WriteString(word)
		lineWidth += w
	}
	return out.String()
}
