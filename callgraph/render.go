package callgraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultDot is the Graphviz executable used by default.
const DefaultDot = "dot"

// Renderer writes call graphs to files.
//
// Create instances with [NewRenderer].
type Renderer struct {
	dot string
}

// RendererOption configures a [Renderer].
type RendererOption func(*Renderer)

// NewRenderer creates a new [Renderer].
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{dot: DefaultDot}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithDot sets the Graphviz executable name or path.
func WithDot(path string) RendererOption {
	return func(r *Renderer) {
		if path != "" {
			r.dot = path
		}
	}
}

// Render writes g to the file out. The format follows the extension:
// ".dot" and ".gv" produce DOT text, ".mmd" a Mermaid flowchart, and any
// other extension (".png", ".svg", ".pdf", ...) is passed to Graphviz as
// the output format.
func (r *Renderer) Render(ctx context.Context, g *Graph, out string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(out), "."))

	switch ext {
	case "":
		return fmt.Errorf("%w: %s: missing file extension", ErrInvalidOutput, out)
	case "dot", "gv":
		return writeFile(out, func(w io.Writer) error { return WriteDOT(w, g) })
	case "mmd":
		return writeFile(out, func(w io.Writer) error { return WriteMermaid(w, g) })
	}

	return r.graphviz(ctx, g, ext, out)
}

func (r *Renderer) graphviz(ctx context.Context, g *Graph, format, out string) error {
	bin, err := exec.LookPath(r.dot)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrGraphvizNotFound, r.dot, err)
	}

	var src bytes.Buffer

	err = WriteDOT(&src, g)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", out)
	cmd.Stdin = &src
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%w: %w", ErrGraphviz, err)
		}

		return fmt.Errorf("%w: %w: %s", ErrGraphviz, err, msg)
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	err = write(f)
	closeErr := f.Close()

	err = errors.Join(err, closeErr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}

	return nil
}
