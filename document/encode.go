package document

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

// Format is an output format for a [Document].
type Format string

// Output formats.
const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

var formatExtensions = map[Format]string{
	FormatMarkdown: ".md",
	FormatJSON:     ".json",
	FormatYAML:     ".yaml",
}

// Formats returns the names of all output formats.
func Formats() []string {
	return []string{string(FormatMarkdown), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat converts a string to a [Format]. "md" and "yml" are accepted
// as aliases.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}

	if slices.Contains(Formats(), s) {
		return Format(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension used for documents in this format,
// including the leading dot.
func (f Format) Extension() string {
	return formatExtensions[f]
}

// Encode writes doc to w in the given format. Markdown is rendered with r.
func (r *Renderer) Encode(w io.Writer, doc Document, format Format) error {
	var (
		out []byte
		err error
	)

	switch format {
	case FormatMarkdown:
		out = []byte(r.RenderDocument(doc))

	case FormatJSON:
		out, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		out = append(out, '\n')

	case FormatYAML:
		out, err = yaml.MarshalWithOptions(doc, yaml.IndentSequence(true))
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}

// Encode writes doc to w using the default [Renderer].
func Encode(w io.Writer, doc Document, format Format) error {
	return NewRenderer().Encode(w, doc, format)
}

// Schema returns the JSON Schema describing the JSON and YAML encodings of
// [Document].
func Schema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[Document](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}

	schema.Title = "readmegen document"
	schema.Description = "Documentation extracted from one Python source file."

	return schema, nil
}
