package document

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for rendering configuration.
type Flags struct {
	Locale string
	Wrap   string
	Format string
}

// Config holds CLI flag values for rendering configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewRenderer] to create a [Renderer].
type Config struct {
	Flags  Flags
	Locale string
	Format string
	Wrap   int
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Locale: "locale",
		Wrap:   "wrap",
		Format: "format",
	}

	return &Config{Flags: f}
}

// RegisterFlags adds rendering flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Locale, c.Flags.Locale, "en",
		"language of headings and placeholders (BCP 47 tag)")
	flags.IntVar(&c.Wrap, c.Flags.Wrap, 0,
		"wrap description text at this many characters (0 disables)")
	flags.StringVarP(&c.Format, c.Flags.Format, "f", string(FormatMarkdown),
		"output format (markdown, json, yaml)")
}

// RegisterCompletions registers shell completions for rendering flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Locale,
		cobra.FixedCompletions(Locales(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Locale, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(Formats(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Format, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Wrap, cobra.NoFileCompletions)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Wrap, err)
	}

	return nil
}

// NewRenderer creates a [Renderer] using this [Config].
func (c *Config) NewRenderer() (*Renderer, error) {
	if c.Wrap < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidOption, c.Flags.Wrap)
	}

	labels, err := LabelsFor(c.Locale)
	if err != nil {
		return nil, err
	}

	return NewRenderer(WithLabels(labels), WithWrap(c.Wrap)), nil
}

// OutputFormat parses the configured output format.
func (c *Config) OutputFormat() (Format, error) {
	if c.Format == "" {
		return FormatMarkdown, nil
	}

	return ParseFormat(c.Format)
}
