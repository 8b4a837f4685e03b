package callgraph

import (
	"fmt"
	"io"

	"github.com/emicklei/dot"
)

// DOT builds g as a Graphviz graph. Definitions are grouped into one
// cluster per file.
func DOT(g *Graph) *dot.Graph {
	out := dot.NewGraph(dot.Directed)
	out.Attr("rankdir", "LR")

	nodes := make(map[string]dot.Node, len(g.Nodes))

	for _, file := range g.Files() {
		cluster := out.Subgraph(file, dot.ClusterOption{})

		for _, n := range g.Nodes {
			if n.File != file {
				continue
			}

			nodes[n.ID] = cluster.Node(n.ID).
				Label(n.Name).
				Attr("shape", "box").
				Attr("style", "rounded,filled").
				Attr("fillcolor", "#f5f5f5").
				Attr("fontname", "Helvetica")
		}
	}

	for _, e := range g.Edges {
		from, okFrom := nodes[e.From]
		to, okTo := nodes[e.To]

		if !okFrom || !okTo {
			continue
		}

		out.Edge(from, to).Attr("color", "#555555")
	}

	return out
}

// WriteDOT writes g in Graphviz DOT syntax.
func WriteDOT(w io.Writer, g *Graph) error {
	_, err := io.WriteString(w, DOT(g).String())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}
