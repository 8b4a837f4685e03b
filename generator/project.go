package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/readmegen/callgraph"
	"go.jacobcolvin.com/readmegen/document"
	"go.jacobcolvin.com/readmegen/pysource"
)

// ProjectFileName is the name of the project file looked up in the source
// directory when none is given explicitly.
const ProjectFileName = ".readmegen.yaml"

// Placeholders accepted in [Project.Naming].
const (
	PlaceholderStem = "{stem}"
	PlaceholderFile = "{file}"
)

// GraphGroup is a set of source files drawn as one call graph image.
type GraphGroup struct {
	// Files are source paths relative to the source directory.
	Files []string `json:"files" yaml:"files" validate:"min=1,dive,required" jsonschema:"source files relative to the source directory"`
	// Output is the image path relative to the images directory. Its
	// extension selects the format.
	Output string `json:"output" yaml:"output" validate:"required" jsonschema:"image path relative to the images directory; the extension selects the format"`
}

// Project holds every generation setting. It is read from the project file
// and overridden by command line flags.
type Project struct {
	Source      string       `json:"source,omitempty" yaml:"source,omitempty" jsonschema:"directory containing Python sources"`
	Output      string       `json:"output,omitempty" yaml:"output,omitempty" validate:"required" jsonschema:"directory receiving the documents"`
	Images      string       `json:"images,omitempty" yaml:"images,omitempty" jsonschema:"directory receiving call graph images"`
	Locale      string       `json:"locale,omitempty" yaml:"locale,omitempty" jsonschema:"language of headings and placeholders"`
	Format      string       `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"markdown, json or yaml"`
	Naming      string       `json:"naming,omitempty" yaml:"naming,omitempty" validate:"required" jsonschema:"output name pattern without extension; {stem} and {file} are replaced"`
	Encoding    string       `json:"encoding,omitempty" yaml:"encoding,omitempty" jsonschema:"source encoding, or auto"`
	Cache       string       `json:"cache,omitempty" yaml:"cache,omitempty" jsonschema:"cache database path; empty disables incremental generation"`
	Dot         string       `json:"dot,omitempty" yaml:"dot,omitempty" jsonschema:"Graphviz executable"`
	Exclude     []string     `json:"exclude,omitempty" yaml:"exclude,omitempty" jsonschema:"glob patterns matched against file names and relative paths"`
	Graphs      []GraphGroup `json:"graphs,omitempty" yaml:"graphs,omitempty" validate:"dive" jsonschema:"call graph groups"`
	Wrap        int          `json:"wrap,omitempty" yaml:"wrap,omitempty" validate:"gte=0" jsonschema:"wrap width for descriptions; 0 disables"`
	Concurrency int          `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0" jsonschema:"number of files processed in parallel"`
	Recursive   bool         `json:"recursive,omitempty" yaml:"recursive,omitempty" jsonschema:"scan subdirectories"`
}

// DefaultProject returns the settings used when neither a project file nor a
// flag provides a value.
func DefaultProject() Project {
	return Project{
		Source:      ".",
		Output:      "./description/",
		Images:      "./img/",
		Locale:      "en",
		Format:      string(document.FormatMarkdown),
		Naming:      "readme_" + PlaceholderStem,
		Encoding:    pysource.EncodingAuto,
		Dot:         callgraph.DefaultDot,
		Exclude:     []string{"annotation.py", "__init__.py"},
		Concurrency: runtime.NumCPU(),
	}
}

// LoadProject reads the project file at path. Settings missing from the
// file keep their [DefaultProject] values. Unknown fields are rejected.
func LoadProject(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return ParseProject(data)
}

// ParseProject decodes a project file. An empty document, or one holding
// only comments, yields [DefaultProject].
func ParseProject(data []byte) (Project, error) {
	p := DefaultProject()

	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return Project{}, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	// Decoding a null document into p would zero every default.
	if doc == nil {
		return p, nil
	}

	err = yaml.UnmarshalWithOptions(data, &p, yaml.DisallowUnknownField())
	if err != nil {
		return Project{}, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	err = p.Validate()
	if err != nil {
		return Project{}, err
	}

	return p, nil
}

// findProject returns the project file in dir, or an empty string when
// there is none.
func findProject(dir string) (string, error) {
	path := filepath.Join(dir, ProjectFileName)

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return path, nil
}

// projectValidator reports field errors under their project file names.
var projectValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")

		return name
	})

	return v
})

// Validate reports invalid settings.
func (p Project) Validate() error {
	err := projectValidator().Struct(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	_, err = document.ParseFormat(p.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	_, err = document.LabelsFor(p.Locale)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	return nil
}

// ProjectSchema returns the JSON Schema of the project file.
func ProjectSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[Project](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}

	schema.Title = "readmegen project"
	schema.Description = "Settings read from " + ProjectFileName + "."

	return schema, nil
}
