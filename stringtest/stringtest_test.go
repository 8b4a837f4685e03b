package stringtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/readmegen/stringtest"
)

func TestInput(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"empty string": {
			input: "",
			want:  "",
		},
		"single line": {
			input: "hello",
			want:  "hello",
		},
		"leading and trailing newline": {
			input: "\nhello\n",
			want:  "hello",
		},
		"common tab indent": {
			input: "\n\tline1\n\tline2\n\t",
			want:  "line1\nline2",
		},
		"python block keeps relative indent": {
			input: `
    class A:
        def f(self):
            pass
    `,
			want: "class A:\n    def f(self):\n        pass",
		},
		"blank lines inside": {
			input: "\n    a\n\n    b",
			want:  "a\n\nb",
		},
		"whitespace-only lines become empty": {
			input: "\n    a\n      \n    b",
			want:  "a\n\nb",
		},
		"extra trailing newline kept": {
			input: "a\nb\n\n",
			want:  "a\nb\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stringtest.Input(tc.input))
		})
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Empty(t, stringtest.JoinLF())
	assert.Equal(t, "a\n\nc", stringtest.JoinLF("a", "", "c"))
	assert.Equal(t, "a\r\nb", stringtest.JoinCRLF("a", "b"))
}
