// Package stringtest provides helpers for writing multi-line string
// expectations in tests.
package stringtest

import "strings"

// Input dedents a raw string literal so test inputs can be indented along
// with the surrounding code.
//
// One leading newline and one trailing whitespace-only line are removed,
// the indentation common to all non-blank lines is stripped, and
// whitespace-only lines become empty.
//
// Example:
//
//	src := stringtest.Input(`
//		def f():
//		    pass
//	`) // -> "def f():\n    pass"
func Input(s string) string {
	lines := strings.Split(s, "\n")

	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}

	indent := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			lines[i] = ""
		case indent > 0:
			lines[i] = line[indent:]
		}
	}

	return strings.Join(lines, "\n")
}

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"line1",
//		"line2",
//	) // -> "line1\nline2"
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}

// JoinCRLF joins multiple strings with CRLF line endings, for inputs that
// must look like they were saved on Windows.
func JoinCRLF(ss ...string) string {
	return strings.Join(ss, "\r\n")
}
