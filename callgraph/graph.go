package callgraph

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Sentinel errors returned by the callgraph package.
var (
	ErrParse            = errors.New("parse source")
	ErrInvalidOutput    = errors.New("invalid output")
	ErrWriteOutput      = errors.New("write output")
	ErrGraphvizNotFound = errors.New("graphviz not found")
	ErrGraphviz         = errors.New("graphviz")
)

// Source is one Python file of a call graph group.
type Source struct {
	// Path names the file in node identifiers and cluster labels.
	Path string
	// Src is the UTF-8 source code.
	Src []byte
}

// Node is a function or method definition.
type Node struct {
	// ID is unique within a graph: "<path>::<name>".
	ID   string
	File string
	// Name is the qualified name, "Class.method" for methods.
	Name string
	Line int
}

// Edge is a call from one definition to another, by node ID.
type Edge struct {
	From string
	To   string
}

// Graph is a static call graph of a group of Python files. Nodes are sorted
// by file and name, edges by caller and callee.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Files returns the distinct files of the graph's nodes in order.
func (g *Graph) Files() []string {
	var files []string

	for _, n := range g.Nodes {
		if len(files) == 0 || files[len(files)-1] != n.File {
			files = append(files, n.File)
		}
	}

	return files
}

// Build parses sources and links every call that resolves to a definition
// within the group.
//
// Calls are resolved as follows. A bare name refers to a function in the
// same file, then to the only function of that name in the group; a class
// name refers to the class's __init__. self.name and cls.name refer to a
// method of the enclosing class. Any other attribute call is linked only
// when exactly one definition in the group has that name. Module-level code
// is not part of the graph.
func Build(ctx context.Context, sources []Source) (*Graph, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(python.GetLanguage())

	b := newBuilder()

	var trees []*sitter.Tree

	defer func() {
		for _, t := range trees {
			t.Close()
		}
	}()

	for _, s := range sources {
		err := ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("build call graph: %w", err)
		}

		tree, err := parser.ParseCtx(ctx, nil, s.Src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParse, s.Path, err)
		}

		trees = append(trees, tree)

		b.collect(s.Path, s.Src, tree.RootNode(), "")
	}

	return b.graph(), nil
}

// definition is a function or method with the syntax needed to find its
// calls.
type definition struct {
	node  Node
	body  *sitter.Node
	src   []byte
	class string
}

type builder struct {
	// defs maps file and qualified name to definitions.
	defs map[string]map[string]*definition
	// funcs maps file and name to functions outside classes.
	funcs map[string]map[string]*definition
	// classes maps file and simple class name to the qualified class name.
	classes map[string]map[string]string
	// byName holds every definition by its unqualified name.
	byName map[string][]*definition
	// globalFuncs and globalClasses index functions and classes of all
	// files by simple name.
	globalFuncs   map[string][]*definition
	globalClasses map[string][]classRef

	ordered []*definition
}

type classRef struct {
	file string
	name string
}

func newBuilder() *builder {
	return &builder{
		defs:          make(map[string]map[string]*definition),
		funcs:         make(map[string]map[string]*definition),
		classes:       make(map[string]map[string]string),
		byName:        make(map[string][]*definition),
		globalFuncs:   make(map[string][]*definition),
		globalClasses: make(map[string][]classRef),
	}
}

// collect records definitions below n. class is the qualified name of the
// class whose body n belongs to, or empty.
func (b *builder) collect(file string, src []byte, n *sitter.Node, class string) {
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}

		def := child
		if def.Type() == "decorated_definition" {
			def = child.ChildByFieldName("definition")
			if def == nil {
				continue
			}
		}

		switch def.Type() {
		case "class_definition":
			simple := nodeName(def, src)
			qualified := qualify(class, simple)

			if class == "" {
				b.addClass(file, simple, qualified)
			}

			body := def.ChildByFieldName("body")
			if body != nil {
				b.collect(file, src, body, qualified)
			}

		case "function_definition":
			b.addFunction(file, src, def, class)

			body := def.ChildByFieldName("body")
			if body != nil {
				b.collect(file, src, body, "")
			}

		default:
			b.collect(file, src, child, class)
		}
	}
}

func (b *builder) addClass(file, simple, qualified string) {
	if simple == "" {
		return
	}

	if b.classes[file] == nil {
		b.classes[file] = make(map[string]string)
	}

	if _, ok := b.classes[file][simple]; ok {
		return
	}

	b.classes[file][simple] = qualified
	b.globalClasses[simple] = append(b.globalClasses[simple], classRef{file: file, name: qualified})
}

func (b *builder) addFunction(file string, src []byte, n *sitter.Node, class string) {
	simple := nodeName(n, src)
	if simple == "" {
		return
	}

	name := qualify(class, simple)

	if b.defs[file] == nil {
		b.defs[file] = make(map[string]*definition)
	}

	if _, ok := b.defs[file][name]; ok {
		return
	}

	d := &definition{
		node: Node{
			ID:   file + "::" + name,
			File: file,
			Name: name,
			Line: int(n.StartPoint().Row) + 1,
		},
		body:  n.ChildByFieldName("body"),
		src:   src,
		class: class,
	}

	b.defs[file][name] = d
	b.byName[simple] = append(b.byName[simple], d)
	b.ordered = append(b.ordered, d)

	if class == "" {
		if b.funcs[file] == nil {
			b.funcs[file] = make(map[string]*definition)
		}

		if _, ok := b.funcs[file][simple]; !ok {
			b.funcs[file][simple] = d
			b.globalFuncs[simple] = append(b.globalFuncs[simple], d)
		}
	}
}

func (b *builder) graph() *Graph {
	g := &Graph{Nodes: make([]Node, 0, len(b.ordered))}
	seen := make(map[Edge]bool)

	for _, d := range b.ordered {
		g.Nodes = append(g.Nodes, d.node)

		for _, callee := range b.calls(d) {
			e := Edge{From: d.node.ID, To: callee.node.ID}
			if !seen[e] {
				seen[e] = true
				g.Edges = append(g.Edges, e)
			}
		}
	}

	slices.SortFunc(g.Nodes, func(x, y Node) int {
		return cmp.Or(cmp.Compare(x.File, y.File), cmp.Compare(x.Name, y.Name))
	})

	slices.SortFunc(g.Edges, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.From, y.From), cmp.Compare(x.To, y.To))
	})

	return g
}

// calls returns the resolved callees of d in call order.
func (b *builder) calls(d *definition) []*definition {
	if d.body == nil {
		return nil
	}

	var callees []*definition

	var visit func(n *sitter.Node)

	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			return
		case "call":
			if callee := b.resolve(d, n); callee != nil {
				callees = append(callees, callee)
			}
		}

		for i := range int(n.NamedChildCount()) {
			child := n.NamedChild(i)
			if child != nil {
				visit(child)
			}
		}
	}

	for i := range int(d.body.NamedChildCount()) {
		child := d.body.NamedChild(i)
		if child != nil {
			visit(child)
		}
	}

	return callees
}

func (b *builder) resolve(caller *definition, call *sitter.Node) *definition {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return nil
	}

	file := caller.node.File

	switch fn.Type() {
	case "identifier":
		name := fn.Content(caller.src)

		if d := b.funcs[file][name]; d != nil {
			return d
		}

		if class, ok := b.classes[file][name]; ok {
			return b.defs[file][class+".__init__"]
		}

		if cands := b.globalFuncs[name]; len(cands) == 1 {
			return cands[0]
		}

		if refs := b.globalClasses[name]; len(refs) == 1 {
			return b.defs[refs[0].file][refs[0].name+".__init__"]
		}

	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")

		if attr == nil {
			return nil
		}

		name := attr.Content(caller.src)

		if obj != nil && obj.Type() == "identifier" && caller.class != "" {
			switch obj.Content(caller.src) {
			case "self", "cls":
				if d := b.defs[file][caller.class+"."+name]; d != nil {
					return d
				}
			}
		}

		if cands := b.byName[name]; len(cands) == 1 {
			return cands[0]
		}
	}

	return nil
}

func nodeName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}

	return name.Content(src)
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}
