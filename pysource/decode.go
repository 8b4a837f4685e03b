package pysource

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingAuto selects the source encoding from a UTF-8 byte order mark or
// a coding declaration, defaulting to UTF-8.
const EncodingAuto = "auto"

var (
	// Matches a coding declaration in one of the first two lines.
	codingRegex = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-\w.]+)`)

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// Python codec names that are not WHATWG labels.
	encodingAliases = map[string]string{
		"latin-1": "iso-8859-1",
		"latin_1": "iso-8859-1",
		"utf8":    "utf-8",
		"utf_8":   "utf-8",
		"cp1251":  "windows-1251",
		"cp1252":  "windows-1252",
		"cp866":   "ibm866",
	}
)

// Decode converts Python source bytes in the named encoding to UTF-8.
//
// The name is a WHATWG encoding label such as "utf-8", "windows-1251" or
// "koi8-r"; common Python codec spellings are accepted too. An empty name or
// [EncodingAuto] honours a UTF-8 byte order mark and the coding declaration
// of the first two lines, and otherwise assumes UTF-8. A leading UTF-8 byte
// order mark is always removed.
func Decode(src []byte, name string) ([]byte, error) {
	if name == "" || name == EncodingAuto {
		name = detectEncoding(src)
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}

	return out, nil
}

// Encodings returns example encoding names accepted by [Decode].
func Encodings() []string {
	return []string{EncodingAuto, "utf-8", "windows-1251", "koi8-r", "iso-8859-1", "windows-1252", "ibm866"}
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := encodingAliases[label]; ok {
		label = alias
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownEncoding, name, err)
	}

	return enc, nil
}

// detectEncoding returns the encoding named by a coding declaration in the
// first two lines of src, or "utf-8".
func detectEncoding(src []byte) string {
	if bytes.HasPrefix(src, utf8BOM) {
		return "utf-8"
	}

	rest := src

	for range 2 {
		line, tail, _ := bytes.Cut(rest, []byte("\n"))

		m := codingRegex.FindSubmatch(line)
		if m != nil {
			return string(m[1])
		}

		// Only comment or blank lines may precede the declaration.
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && trimmed[0] != '#' {
			break
		}

		rest = tail
	}

	return "utf-8"
}
