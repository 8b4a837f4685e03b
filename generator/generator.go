package generator

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/pool"

	"go.jacobcolvin.com/readmegen/cache"
	"go.jacobcolvin.com/readmegen/callgraph"
	"go.jacobcolvin.com/readmegen/docstring"
	"go.jacobcolvin.com/readmegen/document"
	"go.jacobcolvin.com/readmegen/pysource"
)

// Sentinel errors returned by the generator.
var (
	ErrInvalidOption  = errors.New("invalid option")
	ErrInvalidProject = errors.New("invalid project")
	ErrReadInput      = errors.New("read input")
	ErrWriteOutput    = errors.New("write output")
)

// Status is the outcome of processing one source file.
type Status string

// File statuses.
const (
	// StatusWritten means the document was generated and written.
	StatusWritten Status = "written"
	// StatusUnchanged means the cached document is up to date.
	StatusUnchanged Status = "unchanged"
	// StatusMissing means the file disappeared before it was read.
	StatusMissing Status = "missing"
)

// FileResult describes one processed source file.
type FileResult struct {
	// Source is the file path relative to the source directory, with
	// forward slashes.
	Source string
	Output string
	Status Status
	// Entities is the number of documented entities written.
	Entities int
}

// Report summarizes a generation run.
type Report struct {
	// Files are sorted by source path.
	Files []FileResult
	// Graphs are the call graph files written.
	Graphs []string
}

// Count returns the number of files with status s.
func (r *Report) Count(s Status) int {
	n := 0

	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}

	return n
}

// Generator turns a directory of Python files into one document per file.
//
// Create instances with [New].
type Generator struct {
	log      *slog.Logger
	renderer *document.Renderer
	scanner  *pysource.Scanner
	graphs   *callgraph.Renderer
	progress io.Writer
	format   document.Format
	settings []byte
	project  Project
	debounce time.Duration
	force    bool
}

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the logger. The default discards all records.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithProgress draws a progress bar on w while files are processed.
func WithProgress(w io.Writer) Option {
	return func(g *Generator) {
		g.progress = w
	}
}

// WithForce regenerates every document even when the cache says it is up
// to date.
func WithForce(force bool) Option {
	return func(g *Generator) {
		g.force = force
	}
}

// New creates a [Generator] for project p.
func New(p Project, opts ...Option) (*Generator, error) {
	err := p.Validate()
	if err != nil {
		return nil, err
	}

	for _, pattern := range p.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: exclude pattern %q", ErrInvalidProject, pattern)
		}
	}

	format, err := document.ParseFormat(p.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	labels, err := document.LabelsFor(p.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	g := &Generator{
		log:      slog.New(slog.DiscardHandler),
		renderer: document.NewRenderer(document.WithLabels(labels), document.WithWrap(p.Wrap)),
		scanner:  pysource.NewScanner(),
		graphs:   callgraph.NewRenderer(callgraph.WithDot(p.Dot)),
		format:   format,
		settings: fmt.Appendf(nil, "locale=%s wrap=%d format=%s", p.Locale, p.Wrap, format),
		project:  p,
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Project returns the settings of g.
func (g *Generator) Project() Project {
	return g.project
}

// Generate writes the documents for the Python files in dir, or in the
// project's source directory when dir is empty.
//
// The output and image directories are created first and every call graph
// group is rendered once. Files are then discovered, filtered by the
// exclusion patterns and processed in parallel. A file that belongs to a
// graph group gets a link to the group's image as its trailer.
func (g *Generator) Generate(ctx context.Context, dir string) (*Report, error) {
	dir = cmp.Or(dir, g.project.Source)

	err := g.createDirs()
	if err != nil {
		return nil, err
	}

	images, written, err := g.renderGraphs(ctx, dir, g.project.Graphs)
	if err != nil {
		return nil, err
	}

	files, err := g.Discover(dir)
	if err != nil {
		return nil, err
	}

	results, err := g.process(ctx, dir, files, images)
	if err != nil {
		return nil, err
	}

	g.log.Info("generation finished",
		slog.String("source", dir),
		slog.Int("written", countStatus(results, StatusWritten)),
		slog.Int("unchanged", countStatus(results, StatusUnchanged)),
		slog.Int("graphs", len(written)),
	)

	return &Report{Files: results, Graphs: written}, nil
}

func (g *Generator) createDirs() error {
	for _, dir := range []string{g.project.Output, g.project.Images} {
		if dir == "" {
			continue
		}

		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("%w: create directory: %w", ErrWriteOutput, err)
		}
	}

	return nil
}

// Discover returns the Python files in dir that are not excluded, relative
// to dir with forward slashes, sorted.
func (g *Generator) Discover(dir string) ([]string, error) {
	pattern := "*.py"
	if g.project.Recursive {
		pattern = "**/*.py"
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, dir, err)
	}

	files := make([]string, 0, len(matches))

	for _, m := range matches {
		if g.Excluded(m) {
			g.log.Debug("excluded", slog.String("file", m))

			continue
		}

		files = append(files, m)
	}

	slices.Sort(files)

	return files, nil
}

// Excluded reports whether the relative path rel matches an exclusion
// pattern, either by its base name or as a whole.
func (g *Generator) Excluded(rel string) bool {
	base := path.Base(rel)

	for _, pattern := range g.project.Exclude {
		if doublestar.MatchUnvalidated(pattern, base) || doublestar.MatchUnvalidated(pattern, rel) {
			return true
		}
	}

	return false
}

// OutputPath returns the document path for the relative source path rel.
// Subdirectories of the source directory are mirrored below the output
// directory.
func (g *Generator) OutputPath(rel string) string {
	dir, base := path.Split(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))

	name := strings.NewReplacer(PlaceholderStem, stem, PlaceholderFile, base).Replace(g.project.Naming)

	return filepath.Join(g.project.Output, filepath.FromSlash(dir), name+g.format.Extension())
}

// process generates the documents for files in parallel. images maps source
// paths to the call graph image of their group.
func (g *Generator) process(ctx context.Context, dir string, files []string, images map[string]string) ([]FileResult, error) {
	store, err := g.openCache()
	if err != nil {
		return nil, err
	}

	if store != nil {
		defer func() {
			closeErr := store.Close()
			if closeErr != nil {
				g.log.Warn("close cache", slog.Any("error", closeErr))
			}
		}()
	}

	bar := g.newProgress(len(files))

	p := pool.NewWithResults[FileResult]().
		WithContext(ctx).
		WithMaxGoroutines(max(g.project.Concurrency, 1)).
		WithCancelOnError()

	for _, rel := range files {
		p.Go(func(ctx context.Context) (FileResult, error) {
			res, err := g.file(ctx, dir, rel, images[rel], store)
			bar.add()

			return res, err
		})
	}

	results, err := p.Wait()

	bar.finish()

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b FileResult) int {
		return cmp.Compare(a.Source, b.Source)
	})

	return results, nil
}

func (g *Generator) openCache() (*cache.Store, error) {
	if g.project.Cache == "" {
		return nil, nil
	}

	err := os.MkdirAll(filepath.Dir(g.project.Cache), 0o755)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	store, err := cache.Open(g.project.Cache)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// file generates the document for one source file.
func (g *Generator) file(ctx context.Context, dir, rel, image string, store *cache.Store) (FileResult, error) {
	src := filepath.Join(dir, filepath.FromSlash(rel))
	res := FileResult{Source: rel, Output: g.OutputPath(rel)}

	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		g.log.Warn("source file disappeared", slog.String("file", src))

		res.Status = StatusMissing

		return res, nil
	}

	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	code, err := pysource.Decode(data, g.project.Encoding)
	if err != nil {
		return res, fmt.Errorf("%s: %w", src, err)
	}

	trailer := g.trailer(res.Output, image)
	fp := cache.NewFingerprint(code, []byte(rel), []byte(trailer), g.settings)

	if store != nil && !g.force {
		fresh, err := store.Fresh(res.Output, fp)
		if err != nil {
			return res, err
		}

		if fresh {
			g.log.Debug("document up to date", slog.String("source", rel), slog.String("output", res.Output))

			res.Status = StatusUnchanged

			return res, nil
		}
	}

	doc, err := g.Document(ctx, rel, code)
	if err != nil {
		return res, err
	}

	doc.Trailer = trailer

	var buf bytes.Buffer

	err = g.renderer.Encode(&buf, doc, g.format)
	if err != nil {
		return res, err
	}

	err = os.MkdirAll(filepath.Dir(res.Output), 0o755)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	err = os.WriteFile(res.Output, buf.Bytes(), 0o644)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	if store != nil {
		err = store.Put(res.Output, src, fp)
		if err != nil {
			return res, err
		}
	}

	g.log.Info("generated document",
		slog.String("source", rel),
		slog.String("output", res.Output),
		slog.Int("entities", len(doc.Entities)),
	)

	res.Status = StatusWritten
	res.Entities = len(doc.Entities)

	return res, nil
}

// Document scans the UTF-8 Python source of the file named name and parses
// the docstring of every declaration.
func (g *Generator) Document(ctx context.Context, name string, src []byte) (document.Document, error) {
	decls, err := g.scanner.Scan(ctx, name, src)
	if err != nil {
		return document.Document{}, err
	}

	entities := make([]document.Entity, 0, len(decls))

	for _, d := range decls {
		entities = append(entities, document.Entity{
			Kind: d.Kind,
			Name: d.Name,
			Doc:  docstring.Parse(d.Comment),
		})
	}

	return document.Document{File: name, Entities: entities}, nil
}

// trailer returns the image link appended to the document at output, or an
// empty string when image is empty.
func (g *Generator) trailer(output, image string) string {
	if image == "" {
		return ""
	}

	link := image

	rel, err := filepath.Rel(filepath.Dir(output), image)
	if err == nil {
		link = rel
	}

	return "![" + g.renderer.Labels().CallGraph + "](" + filepath.ToSlash(link) + ")"
}

func countStatus(results []FileResult, s Status) int {
	r := Report{Files: results}

	return r.Count(s)
}
