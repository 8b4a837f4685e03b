// Package main provides the CLI entry point for readmegen, a tool that
// generates Markdown documentation from the docstrings of Python source
// files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/readmegen/docstring"
	"go.jacobcolvin.com/readmegen/document"
	"go.jacobcolvin.com/readmegen/generator"
	"go.jacobcolvin.com/readmegen/log"
	"go.jacobcolvin.com/readmegen/profile"
	"go.jacobcolvin.com/readmegen/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type app struct {
	gen     *generator.Config
	log     *log.Config
	profile *profile.Config
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		gen:     generator.NewConfig(),
		log:     log.NewConfig(),
		profile: profile.NewConfig(),
		stdout:  stdout,
		stderr:  stderr,
	}

	profiler := a.profile.NewProfiler()

	rootCmd := &cobra.Command{
		Use:   "readmegen [flags] [dir]",
		Short: "Generate Markdown documentation from Python docstrings",
		Long: `readmegen reads the Python files of a directory and writes one document per
file describing its modules, classes, methods and functions. Docstrings use
the :param:, :type:, :return:, :rtype: and :note: tags.

Settings are read from ` + generator.ProjectFileName + ` in the source directory
when it exists. Flags override the file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          a.runGenerate,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Stop()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	a.gen.RegisterFlags(rootCmd.PersistentFlags())
	a.log.RegisterFlags(rootCmd.PersistentFlags())
	a.profile.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.watchCmd(),
		a.parseCmd(),
		a.schemaCmd(),
		a.versionCmd(),
	)

	completionErr := a.gen.RegisterCompletions(rootCmd)
	if completionErr == nil {
		completionErr = a.log.RegisterCompletions(rootCmd)
	}

	if completionErr == nil {
		completionErr = a.profile.RegisterCompletions(rootCmd)
	}

	if completionErr != nil {
		fmt.Fprintf(stderr, "register completions: %v\n", completionErr)
	}

	return rootCmd
}

func (a *app) newGenerator(cmd *cobra.Command, args []string) (*generator.Generator, error) {
	logger, err := a.log.NewLogger(a.stderr)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(args) > 0 {
		dir = args[0]
	}

	p, err := a.gen.Resolve(cmd.Flags(), dir)
	if err != nil {
		return nil, err
	}

	opts := []generator.Option{generator.WithLogger(logger)}
	if generator.IsTerminal(a.stderr) {
		opts = append(opts, generator.WithProgress(a.stderr))
	}

	return a.gen.NewGenerator(p, opts...)
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	g, err := a.newGenerator(cmd, args)
	if err != nil {
		return err
	}

	report, err := g.Generate(cmd.Context(), "")
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%d written, %d unchanged, %d call graphs\n",
		report.Count(generator.StatusWritten),
		report.Count(generator.StatusUnchanged),
		len(report.Graphs),
	)

	return nil
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [flags] [dir]",
		Short: "Generate documents and regenerate them when sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.newGenerator(cmd, args)
			if err != nil {
				return err
			}

			return g.Watch(cmd.Context(), "")
		},
	}
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Print the structured form of a docstring",
		Long: `parse reads a raw docstring from a file, or from stdin when the argument is
"-" or missing, and prints the parsed record. The output is JSON with
--format json and YAML otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)

			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}

			if err != nil {
				return fmt.Errorf("%w: %w", generator.ErrReadInput, err)
			}

			return a.printRecord(docstring.Parse(string(data)))
		},
	}
}

func (a *app) printRecord(rec docstring.Record) error {
	format, err := document.ParseFormat(a.gen.Render.Format)
	if err != nil {
		return err
	}

	var out []byte

	if format == document.FormatJSON {
		out, err = json.MarshalIndent(rec, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yaml.MarshalWithOptions(rec, yaml.IndentSequence(true))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
	}

	_, err = a.stdout.Write(out)
	if err != nil {
		return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
	}

	return nil
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [document|project]",
		Short:     "Print the JSON Schema of generated documents or of the project file",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"document", "project"},
		RunE: func(_ *cobra.Command, args []string) error {
			schemaFn := document.Schema
			if len(args) > 0 && args[0] == "project" {
				schemaFn = generator.ProjectSchema
			}

			schema, err := schemaFn()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
			}

			_, err = fmt.Fprintf(a.stdout, "%s\n", out)
			if err != nil {
				return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
			}

			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(a.stdout, "readmegen "+version.Get().String())

			return err
		},
	}
}
