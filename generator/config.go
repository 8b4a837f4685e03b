package generator

import (
	"cmp"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/readmegen/callgraph"
	"go.jacobcolvin.com/readmegen/document"
	"go.jacobcolvin.com/readmegen/pysource"
)

// Flags holds CLI flag names for generation configuration.
type Flags struct {
	Project     string
	Output      string
	Images      string
	Exclude     string
	Recursive   string
	Naming      string
	Encoding    string
	Concurrency string
	Cache       string
	Dot         string
	Graph       string
	Force       string
}

// Config holds CLI flag values for generation configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. [Config.Resolve] merges the flags that were set
// explicitly over the project file, and [Config.NewGenerator] creates a
// [Generator].
type Config struct {
	Flags Flags
	// Render holds the rendering flags.
	Render      *document.Config
	ProjectFile string
	Output      string
	Images      string
	Naming      string
	Encoding    string
	Cache       string
	Dot         string
	Exclude     []string
	Graphs      []string
	Concurrency int
	Recursive   bool
	Force       bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Project:     "config",
		Output:      "output",
		Images:      "images",
		Exclude:     "exclude",
		Recursive:   "recursive",
		Naming:      "naming",
		Encoding:    "encoding",
		Concurrency: "concurrency",
		Cache:       "cache",
		Dot:         "dot",
		Graph:       "graph",
		Force:       "force",
	}

	return &Config{Flags: f, Render: document.NewConfig()}
}

// RegisterFlags adds generation and rendering flags to the given
// [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	def := DefaultProject()

	flags.StringVarP(&c.ProjectFile, c.Flags.Project, "c", "",
		"project file (default: "+ProjectFileName+" in the source directory)")
	flags.StringVarP(&c.Output, c.Flags.Output, "o", def.Output,
		"directory receiving the documents")
	flags.StringVar(&c.Images, c.Flags.Images, def.Images,
		"directory receiving call graph images")
	flags.StringSliceVarP(&c.Exclude, c.Flags.Exclude, "e", def.Exclude,
		"glob patterns of files to skip, matched against names and relative paths")
	flags.BoolVarP(&c.Recursive, c.Flags.Recursive, "r", false,
		"scan subdirectories")
	flags.StringVar(&c.Naming, c.Flags.Naming, def.Naming,
		"output name pattern without extension ("+PlaceholderStem+" and "+PlaceholderFile+" are replaced)")
	flags.StringVar(&c.Encoding, c.Flags.Encoding, def.Encoding,
		"source encoding, or auto to honour coding declarations")
	flags.IntVarP(&c.Concurrency, c.Flags.Concurrency, "j", runtime.NumCPU(),
		"number of files processed in parallel")
	flags.StringVar(&c.Cache, c.Flags.Cache, "",
		"cache database enabling incremental generation")
	flags.StringVar(&c.Dot, c.Flags.Dot, callgraph.DefaultDot,
		"Graphviz executable used for image output")
	flags.StringArrayVarP(&c.Graphs, c.Flags.Graph, "g", nil,
		"call graph group as OUTPUT=FILE[,FILE...] (repeatable)")
	flags.BoolVar(&c.Force, c.Flags.Force, false,
		"regenerate every document, ignoring the cache")

	c.Render.RegisterFlags(flags)
}

// RegisterCompletions registers shell completions for generation flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := c.Render.RegisterCompletions(cmd)
	if err != nil {
		return err
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Project,
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Project, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Encoding,
		cobra.FixedCompletions(pysource.Encodings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Encoding, err)
	}

	for _, flag := range []string{c.Flags.Output, c.Flags.Images} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(nil, cobra.ShellCompDirectiveFilterDirs))
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	for _, flag := range []string{c.Flags.Naming, c.Flags.Concurrency, c.Flags.Exclude, c.Flags.Graph} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, cobra.NoFileCompletions)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// Resolve returns the effective [Project] for the source directory dir.
//
// Settings start from [DefaultProject], are replaced by the project file
// (the one named by the config flag, or [ProjectFileName] in dir when it
// exists) and finally by every flag set explicitly in flags. An empty dir
// uses the project file's source directory.
func (c *Config) Resolve(flags *pflag.FlagSet, dir string) (Project, error) {
	p := DefaultProject()

	path := c.ProjectFile
	if path == "" {
		var err error

		path, err = findProject(cmp.Or(dir, "."))
		if err != nil {
			return Project{}, err
		}
	}

	if path != "" {
		var err error

		p, err = LoadProject(path)
		if err != nil {
			return Project{}, err
		}
	}

	if dir != "" {
		p.Source = dir
	}

	err := c.apply(flags, &p)
	if err != nil {
		return Project{}, err
	}

	err = p.Validate()
	if err != nil {
		return Project{}, err
	}

	return p, nil
}

// apply copies explicitly set flags into p.
func (c *Config) apply(flags *pflag.FlagSet, p *Project) error {
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	strs := []struct {
		dst  *string
		flag string
		val  string
	}{
		{&p.Output, c.Flags.Output, c.Output},
		{&p.Images, c.Flags.Images, c.Images},
		{&p.Naming, c.Flags.Naming, c.Naming},
		{&p.Encoding, c.Flags.Encoding, c.Encoding},
		{&p.Cache, c.Flags.Cache, c.Cache},
		{&p.Dot, c.Flags.Dot, c.Dot},
		{&p.Locale, c.Render.Flags.Locale, c.Render.Locale},
		{&p.Format, c.Render.Flags.Format, c.Render.Format},
	}

	for _, s := range strs {
		if changed(s.flag) {
			*s.dst = s.val
		}
	}

	if changed(c.Flags.Exclude) {
		p.Exclude = c.Exclude
	}

	if changed(c.Flags.Recursive) {
		p.Recursive = c.Recursive
	}

	if changed(c.Flags.Concurrency) {
		p.Concurrency = c.Concurrency
	}

	if changed(c.Render.Flags.Wrap) {
		p.Wrap = c.Render.Wrap
	}

	if changed(c.Flags.Graph) {
		groups, err := ParseGraphGroups(c.Graphs)
		if err != nil {
			return err
		}

		p.Graphs = groups
	}

	return nil
}

// NewGenerator creates a [Generator] for p using this [Config].
func (c *Config) NewGenerator(p Project, opts ...Option) (*Generator, error) {
	return New(p, append([]Option{WithForce(c.Force)}, opts...)...)
}

// ParseGraphGroups parses graph flag values of the form
// OUTPUT=FILE[,FILE...].
func ParseGraphGroups(values []string) ([]GraphGroup, error) {
	groups := make([]GraphGroup, 0, len(values))

	for _, v := range values {
		output, files, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(output) == "" {
			return nil, fmt.Errorf("%w: graph %q: want OUTPUT=FILE[,FILE...]", ErrInvalidOption, v)
		}

		g := GraphGroup{Output: strings.TrimSpace(output)}

		for f := range strings.SplitSeq(files, ",") {
			f = strings.TrimSpace(f)
			if f != "" {
				g.Files = append(g.Files, f)
			}
		}

		if len(g.Files) == 0 {
			return nil, fmt.Errorf("%w: graph %q: no files", ErrInvalidOption, v)
		}

		groups = append(groups, g)
	}

	return groups, nil
}
