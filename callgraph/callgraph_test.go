package callgraph_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/readmegen/callgraph"
	"go.jacobcolvin.com/readmegen/stringtest"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	sources := []callgraph.Source{
		{
			Path: "a.py",
			Src: []byte(stringtest.Input(`
				class Calculator:
				    def __init__(self):
				        self.total = 0

				    def add(self, x):
				        self.total = helper(x)
				        return self.total

				def helper(x):
				    return double(x)

				def main():
				    c = Calculator()
				    c.add(1)
				    print(c)
			`)),
		},
		{
			Path: "b.py",
			Src: []byte(stringtest.Input(`
				def double(x):
				    return x * 2
			`)),
		},
	}

	g, err := callgraph.Build(context.Background(), sources)
	require.NoError(t, err)

	names := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		names = append(names, n.ID)
	}

	assert.Equal(t, []string{
		"a.py::Calculator.__init__",
		"a.py::Calculator.add",
		"a.py::helper",
		"a.py::main",
		"b.py::double",
	}, names)

	assert.Equal(t, []callgraph.Edge{
		{From: "a.py::Calculator.add", To: "a.py::helper"},
		{From: "a.py::helper", To: "b.py::double"},
		{From: "a.py::main", To: "a.py::Calculator.__init__"},
		{From: "a.py::main", To: "a.py::Calculator.add"},
	}, g.Edges)

	assert.Equal(t, []string{"a.py", "b.py"}, g.Files())
	assert.Equal(t, 9, g.Nodes[2].Line)
}

func TestBuild_Resolution(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src  string
		want []callgraph.Edge
	}{
		"self resolves to enclosing class": {
			src: stringtest.Input(`
				class A:
				    def run(self):
				        pass

				    def go(self):
				        self.run()

				class B:
				    def run(self):
				        pass
			`),
			want: []callgraph.Edge{
				{From: "m.py::A.go", To: "m.py::A.run"},
			},
		},
		"ambiguous attribute is not linked": {
			src: stringtest.Input(`
				class A:
				    def run(self):
				        pass

				class B:
				    def run(self):
				        pass

				def drive(o):
				    o.run()
			`),
			want: nil,
		},
		"repeated calls yield one edge": {
			src: stringtest.Input(`
				def f():
				    g()
				    g()

				def g():
				    pass
			`),
			want: []callgraph.Edge{
				{From: "m.py::f", To: "m.py::g"},
			},
		},
		"recursion": {
			src: stringtest.Input(`
				def fact(n):
				    return 1 if n == 0 else n * fact(n - 1)
			`),
			want: []callgraph.Edge{
				{From: "m.py::fact", To: "m.py::fact"},
			},
		},
		"nested function calls belong to it": {
			src: stringtest.Input(`
				def outer():
				    def inner():
				        leaf()
				    return inner

				def leaf():
				    pass
			`),
			want: []callgraph.Edge{
				{From: "m.py::inner", To: "m.py::leaf"},
			},
		},
		"decorated methods": {
			src: stringtest.Input(`
				class A:
				    @classmethod
				    def make(cls):
				        return cls.build()

				    @staticmethod
				    def build():
				        pass
			`),
			want: []callgraph.Edge{
				{From: "m.py::A.make", To: "m.py::A.build"},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g, err := callgraph.Build(context.Background(), []callgraph.Source{{Path: "m.py", Src: []byte(tc.src)}})
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.Edges)
		})
	}
}

func TestBuild_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := callgraph.Build(ctx, []callgraph.Source{{Path: "m.py", Src: []byte("def f(): pass")}})
	require.ErrorIs(t, err, context.Canceled)
}

func smallGraph() *callgraph.Graph {
	return &callgraph.Graph{
		Nodes: []callgraph.Node{
			{ID: "m.py::f", File: "m.py", Name: "f", Line: 1},
			{ID: "m.py::g", File: "m.py", Name: "g", Line: 4},
		},
		Edges: []callgraph.Edge{{From: "m.py::f", To: "m.py::g"}},
	}
}

func TestWriteDOT(t *testing.T) {
	t.Parallel()

	g := smallGraph()
	g.Nodes = append(g.Nodes, callgraph.Node{ID: "pkg/n.py::h", File: "pkg/n.py", Name: "h", Line: 1})
	g.Edges = append(g.Edges, callgraph.Edge{From: "m.py::g", To: "pkg/n.py::h"})

	var buf bytes.Buffer

	require.NoError(t, callgraph.WriteDOT(&buf, g))

	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph"), out)
	assert.Contains(t, out, "rankdir")
	assert.Equal(t, 2, strings.Count(out, "subgraph cluster_"), out)
	assert.Contains(t, out, `label="m.py"`)
	assert.Contains(t, out, `label="pkg/n.py"`)
	assert.Contains(t, out, `label="f"`)
	assert.Contains(t, out, `label="h"`)
	assert.Equal(t, 2, strings.Count(out, "->"), out)

	var again bytes.Buffer

	require.NoError(t, callgraph.WriteDOT(&again, g))
	assert.Equal(t, out, again.String())
}

func TestWriteMermaid(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, callgraph.WriteMermaid(&buf, smallGraph()))

	want := stringtest.Input(`
		flowchart LR
		    subgraph file_m_py["m.py"]
		        m_py__f["f"]
		        m_py__g["g"]
		    end
		    m_py__f --> m_py__g
	`) + "\n"

	assert.Equal(t, want, buf.String())
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := callgraph.NewRenderer()

	t.Run("dot file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(dir, "graph.gv")
		require.NoError(t, r.Render(context.Background(), smallGraph(), out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "digraph")
	})

	t.Run("mermaid file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(dir, "graph.mmd")
		require.NoError(t, r.Render(context.Background(), smallGraph(), out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "flowchart LR")
	})

	t.Run("missing extension", func(t *testing.T) {
		t.Parallel()

		err := r.Render(context.Background(), smallGraph(), filepath.Join(dir, "graph"))
		require.ErrorIs(t, err, callgraph.ErrInvalidOutput)
	})

	t.Run("missing graphviz", func(t *testing.T) {
		t.Parallel()

		r := callgraph.NewRenderer(callgraph.WithDot(filepath.Join(dir, "no-such-dot")))

		err := r.Render(context.Background(), smallGraph(), filepath.Join(dir, "graph.png"))
		require.ErrorIs(t, err, callgraph.ErrGraphvizNotFound)
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()

		err := r.Render(context.Background(), smallGraph(), filepath.Join(dir, "missing", "graph.dot"))
		require.ErrorIs(t, err, callgraph.ErrWriteOutput)
	})
}
