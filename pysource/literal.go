package pysource

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// tabSize is the tab stop width used when cleaning docstrings.
const tabSize = 8

// literalValue returns the value of a single Python string literal as it
// appears in source, including prefix and quotes. ok is false for byte
// strings, f-strings and text that is not a string literal.
func literalValue(lit string) (string, bool) {
	prefixLen := strings.IndexAny(lit, `'"`)
	if prefixLen < 0 {
		return "", false
	}

	prefix := strings.ToLower(lit[:prefixLen])
	if strings.ContainsAny(prefix, "bf") || strings.Trim(prefix, "ru") != "" {
		return "", false
	}

	body := lit[prefixLen:]

	var quote string

	switch {
	case strings.HasPrefix(body, `"""`), strings.HasPrefix(body, `'''`):
		quote = body[:3]
	default:
		quote = body[:1]
	}

	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}

	body = body[len(quote) : len(body)-len(quote)]

	if strings.Contains(prefix, "r") {
		return body, true
	}

	return unescape(body), true
}

// unescape resolves backslash escapes the way Python does for a non-raw
// str literal. Unknown escapes are kept verbatim.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var buf strings.Builder

	buf.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			buf.WriteByte(c)

			continue
		}

		i++

		switch e := s[i]; e {
		case '\n':
			// Line continuation.
		case '\\', '\'', '"':
			buf.WriteByte(e)
		case 'a':
			buf.WriteByte('\a')
		case 'b':
			buf.WriteByte('\b')
		case 'f':
			buf.WriteByte('\f')
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'v':
			buf.WriteByte('\v')
		case 'x':
			i += writeCodePoint(&buf, s, i, 2)
		case 'u':
			i += writeCodePoint(&buf, s, i, 4)
		case 'U':
			i += writeCodePoint(&buf, s, i, 8)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := 1
			for n < 3 && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
				n++
			}

			v, _ := strconv.ParseUint(s[i:i+n], 8, 32)
			buf.WriteRune(rune(v))

			i += n - 1
		default:
			buf.WriteByte('\\')
			buf.WriteByte(e)
		}
	}

	return buf.String()
}

// writeCodePoint decodes the hex escape whose letter is at s[at] with
// digits hex digits, writes it to buf and returns the number of digits
// consumed. A malformed escape is written verbatim and consumes nothing.
func writeCodePoint(buf *strings.Builder, s string, at, digits int) int {
	end := at + 1 + digits
	if end <= len(s) {
		v, err := strconv.ParseUint(s[at+1:end], 16, 32)
		if err == nil && v <= utf8.MaxRune {
			buf.WriteRune(rune(v))

			return digits
		}
	}

	buf.WriteByte('\\')
	buf.WriteByte(s[at])

	return 0
}

// cleandoc normalizes docstring indentation. Tabs are expanded, leading
// whitespace is removed from the first line, the common indentation of the
// remaining lines is removed, and leading and trailing blank lines are
// dropped.
func cleandoc(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1

	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}

		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")

	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	return strings.Join(lines, "\n")
}

// expandTabs replaces tabs with spaces up to the next multiple of tabSize
// columns, counting columns from the start of each line.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var buf strings.Builder

	col := 0

	for _, r := range s {
		switch r {
		case '\t':
			n := tabSize - col%tabSize
			buf.WriteString(strings.Repeat(" ", n))

			col += n
		case '\n', '\r':
			buf.WriteRune(r)

			col = 0
		default:
			buf.WriteRune(r)

			col++
		}
	}

	return buf.String()
}
