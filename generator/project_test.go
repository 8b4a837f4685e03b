package generator_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/readmegen/generator"
	"go.jacobcolvin.com/readmegen/stringtest"
)

func TestDefaultProject(t *testing.T) {
	t.Parallel()

	p := generator.DefaultProject()

	assert.Equal(t, ".", p.Source)
	assert.Equal(t, "./description/", p.Output)
	assert.Equal(t, "./img/", p.Images)
	assert.Equal(t, "en", p.Locale)
	assert.Equal(t, "markdown", p.Format)
	assert.Equal(t, "readme_{stem}", p.Naming)
	assert.Equal(t, []string{"annotation.py", "__init__.py"}, p.Exclude)
	assert.Equal(t, runtime.NumCPU(), p.Concurrency)
	require.NoError(t, p.Validate())
}

func TestParseProject(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check func(t *testing.T, p generator.Project)
		input string
		err   error
	}{
		"overrides defaults": {
			input: stringtest.Input(`
				output: docs
				locale: ru
				wrap: 80
				exclude:
				  - setup.py
				graphs:
				  - output: core.svg
				    files: [a.py, b.py]
			`),
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, "docs", p.Output)
				assert.Equal(t, "ru", p.Locale)
				assert.Equal(t, 80, p.Wrap)
				assert.Equal(t, []string{"setup.py"}, p.Exclude)
				assert.Equal(t, "./img/", p.Images, "unset fields keep defaults")
				assert.Equal(t, []generator.GraphGroup{
					{Files: []string{"a.py", "b.py"}, Output: "core.svg"},
				}, p.Graphs)
			},
		},
		"empty": {
			input: "",
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, generator.DefaultProject(), p)
			},
		},
		"comment only": {
			input: "# settings go here\n\n# output: docs\n",
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, generator.DefaultProject(), p)
			},
		},
		"explicit null": {
			input: "~\n",
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, generator.DefaultProject(), p)
			},
		},
		"single setting keeps defaults": {
			input: "recursive: true\n",
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				want := generator.DefaultProject()
				want.Recursive = true
				assert.Equal(t, want, p)
			},
		},
		"unknown field": {
			input: "outptu: docs\n",
			err:   generator.ErrInvalidProject,
		},
		"unknown locale": {
			input: "locale: \"!!\"\n",
			err:   generator.ErrInvalidProject,
		},
		"graph without files": {
			input: "graphs:\n  - output: a.png\n",
			err:   generator.ErrInvalidProject,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := generator.ParseProject([]byte(tc.input))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestLoadProject_Missing(t *testing.T) {
	t.Parallel()

	_, err := generator.LoadProject(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, generator.ErrReadInput)
}

func TestProjectSchema(t *testing.T) {
	t.Parallel()

	schema, err := generator.ProjectSchema()
	require.NoError(t, err)

	assert.Equal(t, "readmegen project", schema.Title)
	assert.Contains(t, schema.Properties, "output")
	assert.Contains(t, schema.Properties, "graphs")
}

func TestConfig_Resolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		generator.ProjectFileName: stringtest.Input(`
			output: from-file
			naming: "{stem}"
			wrap: 40
		`),
	})

	tcs := map[string]struct {
		check func(t *testing.T, p generator.Project)
		args  []string
	}{
		"project file": {
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, dir, p.Source)
				assert.Equal(t, "from-file", p.Output)
				assert.Equal(t, "{stem}", p.Naming)
				assert.Equal(t, 40, p.Wrap)
				assert.Equal(t, "en", p.Locale)
			},
		},
		"flags win": {
			args: []string{"-o", "from-flag", "--wrap", "0", "--locale", "ru", "-f", "yaml", "-r"},
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, "from-flag", p.Output)
				assert.Equal(t, "{stem}", p.Naming)
				assert.Equal(t, 0, p.Wrap)
				assert.Equal(t, "ru", p.Locale)
				assert.Equal(t, "yaml", p.Format)
				assert.True(t, p.Recursive)
			},
		},
		"graphs": {
			args: []string{"-g", "all.dot=a.py,b.py", "-g", "c.mmd=c.py"},
			check: func(t *testing.T, p generator.Project) {
				t.Helper()

				assert.Equal(t, []generator.GraphGroup{
					{Files: []string{"a.py", "b.py"}, Output: "all.dot"},
					{Files: []string{"c.py"}, Output: "c.mmd"},
				}, p.Graphs)
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := generator.NewConfig()
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			cfg.RegisterFlags(flags)

			require.NoError(t, flags.Parse(tc.args))

			p, err := cfg.Resolve(flags, dir)
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestConfig_Resolve_NoProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg := generator.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{"--naming", "doc_{stem}"}))

	p, err := cfg.Resolve(flags, dir)
	require.NoError(t, err)

	want := generator.DefaultProject()
	want.Source = dir
	want.Naming = "doc_{stem}"

	assert.Equal(t, want, p)
}

func TestConfig_Resolve_EmptyProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{generator.ProjectFileName: "# no settings yet\n"})

	cfg := generator.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse(nil))

	p, err := cfg.Resolve(flags, dir)
	require.NoError(t, err)

	want := generator.DefaultProject()
	want.Source = dir

	assert.Equal(t, want, p)
}

func TestConfig_Resolve_ExplicitProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFiles(t, dir, map[string]string{"custom.yaml": "source: pkg\nformat: json\n"})

	cfg := generator.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{"-c", path}))

	p, err := cfg.Resolve(flags, "")
	require.NoError(t, err)

	assert.Equal(t, "pkg", p.Source)
	assert.Equal(t, "json", p.Format)
}

func TestConfig_Resolve_InvalidFlag(t *testing.T) {
	t.Parallel()

	cfg := generator.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{"-g", "nofiles"}))

	_, err := cfg.Resolve(flags, t.TempDir())
	require.ErrorIs(t, err, generator.ErrInvalidOption)
}

func TestParseGraphGroups(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err   error
		input []string
		want  []generator.GraphGroup
	}{
		"single": {
			input: []string{"g.png=a.py"},
			want:  []generator.GraphGroup{{Files: []string{"a.py"}, Output: "g.png"}},
		},
		"spaces and empty entries": {
			input: []string{" g.svg = a.py, ,b.py "},
			want:  []generator.GraphGroup{{Files: []string{"a.py", "b.py"}, Output: "g.svg"}},
		},
		"no separator": {
			input: []string{"a.py"},
			err:   generator.ErrInvalidOption,
		},
		"no output": {
			input: []string{"=a.py"},
			err:   generator.ErrInvalidOption,
		},
		"no files": {
			input: []string{"g.png="},
			err:   generator.ErrInvalidOption,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := generator.ParseGraphGroups(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
