package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"go.jacobcolvin.com/readmegen/callgraph"
	"go.jacobcolvin.com/readmegen/pysource"
)

// renderGraphs draws every group and returns the image of each source file
// that belongs to a written group, along with the written images. A file in
// several groups links to the first one.
//
// Groups that need Graphviz are skipped with a warning when it is missing.
func (g *Generator) renderGraphs(ctx context.Context, dir string, groups []GraphGroup) (map[string]string, []string, error) {
	images := make(map[string]string)

	var written []string

	for _, group := range groups {
		out := filepath.Join(g.project.Images, filepath.FromSlash(group.Output))

		sources, err := g.graphSources(dir, group)
		if err != nil {
			return nil, nil, err
		}

		graph, err := callgraph.Build(ctx, sources)
		if err != nil {
			return nil, nil, fmt.Errorf("graph %s: %w", group.Output, err)
		}

		err = os.MkdirAll(filepath.Dir(out), 0o755)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}

		err = g.graphs.Render(ctx, graph, out)
		if errors.Is(err, callgraph.ErrGraphvizNotFound) {
			g.log.Warn("skipping call graph", slog.String("output", out), slog.Any("error", err))

			continue
		}

		if err != nil {
			return nil, nil, fmt.Errorf("graph %s: %w", group.Output, err)
		}

		g.log.Info("rendered call graph",
			slog.String("output", out),
			slog.Int("nodes", len(graph.Nodes)),
			slog.Int("edges", len(graph.Edges)),
		)

		written = append(written, out)

		for _, s := range sources {
			if _, ok := images[s.Path]; !ok {
				images[s.Path] = out
			}
		}
	}

	return images, written, nil
}

// graphSources reads and decodes the files of group. Missing files are
// skipped with a warning.
func (g *Generator) graphSources(dir string, group GraphGroup) ([]callgraph.Source, error) {
	sources := make([]callgraph.Source, 0, len(group.Files))

	for _, f := range group.Files {
		rel := path.Clean(filepath.ToSlash(f))

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if errors.Is(err, fs.ErrNotExist) {
			g.log.Warn("call graph source not found", slog.String("graph", group.Output), slog.String("file", rel))

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		src, err := pysource.Decode(data, g.project.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}

		sources = append(sources, callgraph.Source{Path: rel, Src: src})
	}

	return sources, nil
}

// groupsOf returns the groups that contain the relative source path rel.
func groupsOf(groups []GraphGroup, rel string) []GraphGroup {
	var found []GraphGroup

	for _, group := range groups {
		for _, f := range group.Files {
			if path.Clean(filepath.ToSlash(f)) == rel {
				found = append(found, group)

				break
			}
		}
	}

	return found
}
