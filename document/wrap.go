package document

import (
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// wrapText wraps text at spaces so no line exceeds width cells, unless a
// single word is longer. Runs of whitespace collapse to one space. A width
// below 1 returns text unchanged.
func wrapText(text string, width int) string {
	if width < 1 {
		return text
	}

	w := wordwrap.NewWriter(width)
	// Only spaces break lines; "-" is kept inside words.
	w.Breakpoints = nil

	_, _ = w.Write([]byte(strings.Join(strings.Fields(text), " ")))
	_ = w.Close()

	return w.String()
}

// wrapItem wraps text behind a list marker within width cells.
// Continuation lines are indented to the column where text starts.
func wrapItem(marker, text string, width int) string {
	if width < 1 {
		return marker + text
	}

	n := utf8.RuneCountInString(marker)

	body := wrapText(text, max(width-n, 1))
	if body == "" {
		return strings.TrimRight(marker, " ")
	}

	body = indent.String(body, uint(n))

	return marker + body[n:]
}
