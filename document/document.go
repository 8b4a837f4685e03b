package document

import (
	"errors"
	"strings"

	"go.jacobcolvin.com/readmegen/docstring"
)

// Sentinel errors returned by the document package.
var (
	ErrInvalidOption = errors.New("invalid option")
	ErrUnknownLocale = errors.New("unknown locale")
	ErrUnknownFormat = errors.New("unknown format")
	ErrWriteOutput   = errors.New("write output")
)

// Kind is the kind of a documented entity.
type Kind string

// Entity kinds.
const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindFunction Kind = "function"
)

// Entity is a named unit of source code together with its parsed
// docstring. Method names are qualified with their class name
// ("Class.method").
type Entity struct {
	Kind Kind             `json:"kind" yaml:"kind" jsonschema:"module, class, method or function"`
	Name string           `json:"name" yaml:"name" jsonschema:"qualified name; methods are prefixed with their class name"`
	Doc  docstring.Record `json:"doc" yaml:"doc"`
}

// SimpleName returns the last dot-separated segment of the entity name.
func (e Entity) SimpleName() string {
	if i := strings.LastIndexByte(e.Name, '.'); i >= 0 {
		return e.Name[i+1:]
	}

	return e.Name
}

// Document is the rendered documentation of one source file.
type Document struct {
	File     string   `json:"file" yaml:"file" jsonschema:"source file name"`
	Trailer  string   `json:"trailer,omitempty" yaml:"trailer,omitempty" jsonschema:"text appended verbatim after all sections"`
	Entities []Entity `json:"entities" yaml:"entities" jsonschema:"entities in source order"`
}
