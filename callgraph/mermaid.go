package callgraph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var mermaidIDReplacer = strings.NewReplacer(
	"/", "_", ".", "_", "-", "_", " ", "_", ":", "_", "\\", "_",
)

// WriteMermaid writes g as a Mermaid flowchart with one subgraph per file.
func WriteMermaid(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "flowchart LR")

	for _, file := range g.Files() {
		fmt.Fprintf(bw, "    subgraph %s[\"%s\"]\n", sanitizeID("file "+file), escapeMermaid(file))

		for _, n := range g.Nodes {
			if n.File != file {
				continue
			}

			fmt.Fprintf(bw, "        %s[\"%s\"]\n", sanitizeID(n.ID), escapeMermaid(n.Name))
		}

		fmt.Fprintln(bw, "    end")
	}

	for _, e := range g.Edges {
		fmt.Fprintf(bw, "    %s --> %s\n", sanitizeID(e.From), sanitizeID(e.To))
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}

// escapeMermaid replaces characters that would break Mermaid label syntax.
func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// sanitizeID converts a string into a safe Mermaid node identifier.
func sanitizeID(s string) string {
	return mermaidIDReplacer.Replace(s)
}
