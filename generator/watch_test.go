package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/readmegen/generator"
)

func TestDebouncer(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		batches [][]string
	)

	d := generator.NewDebouncer(50*time.Millisecond, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()

		batches = append(batches, paths)
	})

	d.Add("b.py")
	d.Add("a.py")
	d.Add("b.py")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(batches) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"a.py", "b.py"}, batches[0])
	mu.Unlock()

	d.Stop()
	d.Add("c.py")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Len(t, batches, 1, "adds after stop are ignored")
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	t.Parallel()

	flushed := make(chan []string, 1)

	d := generator.NewDebouncer(50*time.Millisecond, func(paths []string) {
		flushed <- paths
	})

	d.Add("a.py")
	d.Stop()

	select {
	case paths := <-flushed:
		t.Fatalf("unexpected flush: %v", paths)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestGenerator_Watch(t *testing.T) {
	t.Parallel()

	p, src := newProject(t)
	writeFiles(t, src, map[string]string{"a.py": `"""First."""` + "\n"})

	g, err := generator.New(p, generator.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- g.Watch(ctx, "")
	}()

	outA := filepath.Join(p.Output, "readme_a.md")
	outB := filepath.Join(p.Output, "readme_b.md")

	contains := func(path, text string) func() bool {
		return func() bool {
			data, err := os.ReadFile(path)

			return err == nil && strings.Contains(string(data), text)
		}
	}

	require.Eventually(t, contains(outA, "First."), 5*time.Second, 20*time.Millisecond)

	writeFiles(t, src, map[string]string{
		"a.py":      `"""Second."""` + "\n",
		"b.py":      `"""New file."""` + "\n",
		"notes.txt": "ignored\n",
	})

	require.Eventually(t, contains(outA, "Second."), 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, contains(outB, "New file."), 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestGenerator_Watch_Recursive(t *testing.T) {
	t.Parallel()

	p, src := newProject(t)
	p.Recursive = true

	writeFiles(t, src, map[string]string{
		"top.py":            `"""Top."""` + "\n",
		"pkg/sub/deep.py":   `"""Deep."""` + "\n",
		"pkg/__pycache__/x": "",
	})

	g, err := generator.New(p, generator.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- g.Watch(ctx, "")
	}()

	out := filepath.Join(p.Output, "pkg", "sub", "readme_deep.md")

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)

		return err == nil && strings.Contains(string(data), "Deep.")
	}, 5*time.Second, 20*time.Millisecond)

	writeFiles(t, src, map[string]string{"pkg/sub/deep.py": `"""Deeper."""` + "\n"})

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)

		return err == nil && strings.Contains(string(data), "Deeper.")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestGenerator_Regenerate(t *testing.T) {
	t.Parallel()

	p, src := newProject(t)
	p.Graphs = []generator.GraphGroup{
		{Files: []string{"a.py", "b.py"}, Output: "ab.dot"},
		{Files: []string{"c.py"}, Output: "c.dot"},
	}

	writeFiles(t, src, map[string]string{
		"a.py": "def a():\n    b()\n",
		"b.py": "def b():\n    pass\n",
		"c.py": "def c():\n    pass\n",
	})

	g, err := generator.New(p)
	require.NoError(t, err)

	report, err := g.Regenerate(context.Background(), src, []string{"b.py"})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(p.Images, "ab.dot")}, report.Graphs)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "b.py", report.Files[0].Source)
	assert.Contains(t, readFile(t, filepath.Join(p.Output, "readme_b.md")), "![Call graph](../img/ab.dot)")
	assert.NoFileExists(t, filepath.Join(p.Images, "c.dot"))
}
