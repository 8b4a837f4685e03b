package document

import (
	"strings"

	"go.jacobcolvin.com/readmegen/docstring"
)

// Renderer turns documented entities into Markdown.
//
// Rendering is a pure function of the renderer's settings and its inputs.
// A Renderer is safe for concurrent use.
//
// Create instances with [NewRenderer].
type Renderer struct {
	labels Labels
	wrap   int
}

// Option configures a [Renderer].
type Option func(*Renderer)

// NewRenderer creates a [Renderer] with the given options. The default
// renderer uses [English] labels and does not wrap text.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{labels: English}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithLabels sets the headings, prefixes and placeholders.
func WithLabels(labels Labels) Option {
	return func(r *Renderer) {
		r.labels = labels
	}
}

// WithWrap wraps description text at width runes. Zero disables wrapping.
func WithWrap(width int) Option {
	return func(r *Renderer) {
		r.wrap = max(width, 0)
	}
}

// Labels returns the labels used by r.
func (r *Renderer) Labels() Labels {
	return r.labels
}

// Render renders entities with the default [Renderer].
func Render(file string, entities []Entity, trailer string) string {
	return NewRenderer().Render(file, entities, trailer)
}

// RenderDocument renders doc. It is equivalent to calling [Renderer.Render]
// with the document's fields.
func (r *Renderer) RenderDocument(doc Document) string {
	return r.Render(doc.File, doc.Entities, doc.Trailer)
}

// Render produces the Markdown document for one source file.
//
// The output starts with a title naming file, followed by one section per
// entity in the given order, and ends with trailer (when non-empty) and a
// newline. Blocks are separated by blank lines.
func (r *Renderer) Render(file string, entities []Entity, trailer string) string {
	blocks := []string{"# " + r.labels.File + " " + file}

	for _, e := range entities {
		switch e.Kind {
		case KindModule:
			blocks = append(blocks, r.moduleBlocks(e)...)
		case KindClass:
			blocks = append(blocks, r.classBlocks(e)...)
		case KindMethod:
			blocks = append(blocks, r.functionBlocks(r.labels.Method, e)...)
		default:
			blocks = append(blocks, r.functionBlocks(r.labels.Function, e)...)
		}
	}

	if trailer != "" {
		blocks = append(blocks, trailer)
	}

	return strings.Join(blocks, "\n\n") + "\n"
}

func (r *Renderer) moduleBlocks(e Entity) []string {
	if e.Doc.Description == "" {
		return nil
	}

	return []string{wrapText(e.Doc.Description, r.wrap)}
}

func (r *Renderer) classBlocks(e Entity) []string {
	blocks := []string{
		"## " + r.labels.Class + ": " + e.SimpleName(),
		r.field(r.labels.Description, r.orPlaceholder(e.Doc.Description)),
	}

	if len(e.Doc.Notes) > 0 {
		blocks = append(blocks, r.notes(e.Doc.Notes))
	}

	return blocks
}

func (r *Renderer) functionBlocks(label string, e Entity) []string {
	blocks := []string{
		"### " + label + ": " + e.Name,
		r.field(r.labels.Description, r.orPlaceholder(e.Doc.Description)),
	}

	if len(e.Doc.Params) > 0 {
		blocks = append(blocks, r.labels.Parameters+":", r.params(e.Doc.Params))
	}

	if e.Doc.Return != nil {
		blocks = append(blocks, r.field(r.labels.Returns, *e.Doc.Return))
	}

	if e.Doc.ReturnType != nil {
		blocks = append(blocks, r.field(r.labels.ReturnType, *e.Doc.ReturnType))
	}

	if len(e.Doc.Notes) > 0 {
		blocks = append(blocks, r.notes(e.Doc.Notes))
	}

	return blocks
}

// params renders one bullet per parameter, in record order.
func (r *Renderer) params(params []docstring.Param) string {
	lines := make([]string, 0, len(params))

	for _, p := range params {
		typ := r.labels.NoType
		if p.Type != nil && *p.Type != "" {
			typ = *p.Type
		}

		item := "**" + p.Name + "** (" + typ + "): " + r.orPlaceholder(p.Description)
		lines = append(lines, wrapItem("- ", item, r.wrap))
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) notes(notes []string) string {
	return r.field(r.labels.Notes, strings.Join(notes, ", "))
}

func (r *Renderer) field(label, value string) string {
	return wrapText(label+": "+value, r.wrap)
}

func (r *Renderer) orPlaceholder(s string) string {
	if s == "" {
		return r.labels.NoDescription
	}

	return s
}
