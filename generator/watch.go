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
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before [Generator.Watch]
// regenerates.
const DefaultDebounce = 200 * time.Millisecond

// Debouncer collects paths and hands them over in one batch once no path
// was added for a whole window.
type Debouncer struct {
	timer   *time.Timer
	paths   map[string]struct{}
	onFlush func([]string)
	window  time.Duration
	mu      sync.Mutex
	stopped bool
}

// NewDebouncer creates a [Debouncer] calling onFlush with the sorted
// batch.
func NewDebouncer(window time.Duration, onFlush func([]string)) *Debouncer {
	return &Debouncer{
		window:  window,
		paths:   make(map[string]struct{}),
		onFlush: onFlush,
	}
}

// Add adds path to the pending batch and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.paths[path] = struct{}{}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()

		if d.stopped {
			d.mu.Unlock()

			return
		}

		d.flushLocked()
	})
}

// flushLocked takes the pending batch, releases the lock and calls
// onFlush.
func (d *Debouncer) flushLocked() {
	paths := make([]string, 0, len(d.paths))
	for p := range d.paths {
		paths = append(paths, p)
	}

	d.paths = make(map[string]struct{})

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if len(paths) > 0 && d.onFlush != nil {
		slices.Sort(paths)
		d.onFlush(paths)
	}
}

// Stop discards the pending batch. Later calls to [Debouncer.Add] are
// ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.paths = make(map[string]struct{})
}

// WithDebounce sets the quiet period used by [Generator.Watch].
func WithDebounce(window time.Duration) Option {
	return func(g *Generator) {
		if window > 0 {
			g.debounce = window
		}
	}
}

// Watch generates every document in dir and then regenerates the documents
// of changed files until ctx is done. Call graphs containing a changed file
// are drawn again. An empty dir uses the project's source directory.
func (g *Generator) Watch(ctx context.Context, dir string) error {
	if dir == "" {
		dir = g.project.Source
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		closeErr := fw.Close()
		if closeErr != nil {
			g.log.Warn("close watcher", slog.Any("error", closeErr))
		}
	}()

	err = g.watchDirs(fw, dir)
	if err != nil {
		return err
	}

	_, err = g.Generate(ctx, dir)
	if err != nil {
		return err
	}

	batches := make(chan []string, 1)
	done := make(chan struct{})

	debouncer := NewDebouncer(g.debounce, batchSender(batches, done))

	defer func() {
		debouncer.Stop()
		close(done)
	}()

	g.log.Info("watching for changes", slog.String("source", dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			rel, ok := g.changed(fw, dir, event)
			if ok {
				debouncer.Add(rel)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			g.log.Warn("watch error", slog.Any("error", err))

		case paths := <-batches:
			report, err := g.Regenerate(ctx, dir, paths)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			if err != nil {
				g.log.Error("regenerate", slog.Any("error", err))

				continue
			}

			g.log.Info("regenerated",
				slog.Int("written", report.Count(StatusWritten)),
				slog.Int("graphs", len(report.Graphs)),
			)
		}
	}
}

// batchSender returns a flush callback handing batches to the watch loop.
// Once done is closed, batches are dropped.
func batchSender(batches chan<- []string, done <-chan struct{}) func([]string) {
	return func(paths []string) {
		select {
		case batches <- paths:
		case <-done:
		}
	}
}

// watchDirs adds dir, and its subdirectories when scanning recursively.
func (g *Generator) watchDirs(fw *fsnotify.Watcher, dir string) error {
	err := fw.Add(dir)
	if err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrReadInput, dir, err)
	}

	if !g.project.Recursive {
		return nil
	}

	err = doublestar.GlobWalk(os.DirFS(dir), "**", func(sub string, d fs.DirEntry) error {
		if !d.IsDir() || sub == "." || sub == "" || g.ignoredDir(sub) {
			return nil
		}

		addErr := fw.Add(filepath.Join(dir, filepath.FromSlash(sub)))
		if addErr != nil {
			return fmt.Errorf("watch %s: %w", sub, addErr)
		}

		return nil
	}, doublestar.WithNoHidden())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadInput, dir, err)
	}

	return nil
}

// ignoredDir reports whether the relative directory rel is hidden or
// holds generated files.
func (g *Generator) ignoredDir(rel string) bool {
	for part := range strings.SplitSeq(rel, "/") {
		if strings.HasPrefix(part, ".") || part == "__pycache__" {
			return true
		}
	}

	return false
}

// changed returns the relative path of the Python file touched by event.
// New directories are watched when scanning recursively.
func (g *Generator) changed(fw *fsnotify.Watcher, dir string, event fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(dir, event.Name)
	if err != nil {
		return "", false
	}

	rel = filepath.ToSlash(rel)

	if event.Has(fsnotify.Create) && g.project.Recursive && !g.ignoredDir(rel) {
		info, statErr := os.Stat(event.Name)
		if statErr == nil && info.IsDir() {
			addErr := fw.Add(event.Name)
			if addErr != nil {
				g.log.Warn("watch directory", slog.String("dir", event.Name), slog.Any("error", addErr))
			}

			return "", false
		}
	}

	if path.Ext(rel) != ".py" || g.Excluded(rel) {
		return "", false
	}

	if !g.project.Recursive && strings.Contains(rel, "/") {
		return "", false
	}

	g.log.Debug("file changed", slog.String("file", rel), slog.String("op", event.Op.String()))

	return rel, true
}

// Regenerate writes the documents of the relative source paths rels again
// and draws every call graph that contains one of them.
func (g *Generator) Regenerate(ctx context.Context, dir string, rels []string) (*Report, error) {
	var affected []GraphGroup

	for _, group := range g.project.Graphs {
		for _, rel := range rels {
			if len(groupsOf([]GraphGroup{group}, rel)) > 0 {
				affected = append(affected, group)

				break
			}
		}
	}

	_, written, err := g.renderGraphs(ctx, dir, affected)
	if err != nil {
		return nil, err
	}

	images := g.existingImages(rels)

	results, err := g.process(ctx, dir, rels, images)
	if err != nil {
		return nil, err
	}

	return &Report{Files: results, Graphs: written}, nil
}

// existingImages returns, for each of rels, the image of the first group
// containing it whose image exists.
func (g *Generator) existingImages(rels []string) map[string]string {
	images := make(map[string]string)

	for _, rel := range rels {
		for _, group := range groupsOf(g.project.Graphs, rel) {
			out := filepath.Join(g.project.Images, filepath.FromSlash(group.Output))

			_, err := os.Stat(out)
			if err == nil {
				images[rel] = out

				break
			}
		}
	}

	return images
}
