package pysource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"go.jacobcolvin.com/readmegen/document"
)

// Sentinel errors returned by the pysource package.
var (
	ErrUnsupportedFile = errors.New("unsupported file")
	ErrParse           = errors.New("parse source")
	ErrDecode          = errors.New("decode source")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// Extensions lists the file extensions [Scanner.Scan] accepts.
var Extensions = []string{".py", ".pyi", ".pyw"}

// Declaration is a documented entity found in Python source.
type Declaration struct {
	// Kind is the entity kind.
	Kind document.Kind
	// Name is the qualified name. Methods and nested classes are prefixed
	// with their enclosing class ("Class.method").
	Name string
	// Comment is the cleaned docstring, or empty when there is none.
	Comment string
	// Line is the 1-based line of the declaration.
	Line int
}

// Scanner extracts declarations and their docstrings from Python source.
//
// A Scanner is safe for concurrent use; every call to [Scanner.Scan] uses
// its own parser.
type Scanner struct{}

// NewScanner creates a new [Scanner].
func NewScanner() *Scanner {
	return &Scanner{}
}

// Supported reports whether name has a Python source extension.
func Supported(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// Scan parses src, the UTF-8 contents of the Python file name, and returns
// its declarations in breadth-first source order.
//
// The module docstring, when present, comes first as a [document.KindModule]
// declaration named after the file. Each class is followed by the methods
// defined directly in its body. Every other function definition, including
// nested ones, is reported as a [document.KindFunction]. When a qualified
// name repeats, only its first declaration is kept.
//
// Syntax errors do not fail the scan; declarations in the parts of the file
// that could be recovered are returned.
func (s *Scanner) Scan(ctx context.Context, name string, src []byte) ([]Declaration, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}

	defer tree.Close()

	w := &walker{
		src:       src,
		qualified: make(map[nodeKey]string),
		methods:   make(map[nodeKey]bool),
		names:     make(map[string]bool),
	}

	root := tree.RootNode()

	doc, ok := docstringOf(root, src)
	if ok {
		w.add(Declaration{
			Kind:    document.KindModule,
			Name:    moduleName(name),
			Comment: doc,
			Line:    1,
		})
	}

	w.walk(root)

	return w.decls, nil
}

// moduleName returns the file name without directory and extension.
func moduleName(name string) string {
	base := filepath.Base(name)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// nodeKey identifies a syntax node within one tree.
type nodeKey struct {
	kind       string
	start, end uint32
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{kind: n.Type(), start: n.StartByte(), end: n.EndByte()}
}

type walker struct {
	src []byte

	// qualified maps class definitions nested in a class body to their
	// qualified names.
	qualified map[nodeKey]string
	// methods holds function definitions already reported as methods.
	methods map[nodeKey]bool
	// names holds qualified names already reported.
	names map[string]bool

	decls []Declaration
}

// walk visits the tree breadth-first.
func (w *walker) walk(root *sitter.Node) {
	queue := []*sitter.Node{root}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		switch n.Type() {
		case "class_definition":
			w.class(n)
		case "function_definition":
			if !w.methods[keyOf(n)] {
				w.add(w.declaration(document.KindFunction, nodeName(n, w.src), n))
			}
		}

		for i := range int(n.NamedChildCount()) {
			child := n.NamedChild(i)
			if child != nil {
				queue = append(queue, child)
			}
		}
	}
}

// class reports a class followed by the methods defined directly in its
// body.
func (w *walker) class(n *sitter.Node) {
	name, ok := w.qualified[keyOf(n)]
	if !ok {
		name = nodeName(n, w.src)
	}

	w.add(w.declaration(document.KindClass, name, n))

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}

	for i := range int(body.NamedChildCount()) {
		def := unwrapDecorated(body.NamedChild(i))
		if def == nil {
			continue
		}

		switch def.Type() {
		case "function_definition":
			w.methods[keyOf(def)] = true
			w.add(w.declaration(document.KindMethod, name+"."+nodeName(def, w.src), def))

		case "class_definition":
			w.qualified[keyOf(def)] = name + "." + nodeName(def, w.src)
		}
	}
}

func (w *walker) declaration(kind document.Kind, name string, n *sitter.Node) Declaration {
	doc, _ := docstringOf(n.ChildByFieldName("body"), w.src)

	return Declaration{
		Kind:    kind,
		Name:    name,
		Comment: doc,
		Line:    int(n.StartPoint().Row) + 1,
	}
}

func (w *walker) add(d Declaration) {
	if d.Name == "" || w.names[d.Name] {
		return
	}

	w.names[d.Name] = true
	w.decls = append(w.decls, d)
}

func nodeName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}

	return name.Content(src)
}

// unwrapDecorated returns the definition inside a decorated_definition, or
// n itself.
func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n == nil || n.Type() != "decorated_definition" {
		return n
	}

	return n.ChildByFieldName("definition")
}

// docstringOf returns the cleaned docstring of a module or block node: the
// first statement when it is an expression statement consisting of a plain
// string literal or an implicit concatenation of them.
func docstringOf(body *sitter.Node, src []byte) (string, bool) {
	if body == nil {
		return "", false
	}

	var first *sitter.Node

	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		if child != nil && child.Type() != "comment" {
			first = child

			break
		}
	}

	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() != 1 {
		return "", false
	}

	expr := first.NamedChild(0)
	if expr == nil {
		return "", false
	}

	var parts []*sitter.Node

	switch expr.Type() {
	case "string":
		parts = []*sitter.Node{expr}
	case "concatenated_string":
		for i := range int(expr.NamedChildCount()) {
			part := expr.NamedChild(i)
			if part != nil && part.Type() == "string" {
				parts = append(parts, part)
			}
		}
	default:
		return "", false
	}

	var buf strings.Builder

	for _, part := range parts {
		v, ok := literalValue(part.Content(src))
		if !ok {
			return "", false
		}

		buf.WriteString(v)
	}

	return cleandoc(buf.String()), true
}
