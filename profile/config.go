package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPU       string
	Heap      string
	Goroutine string
}

// Config holds profile output paths. An empty path disables that profile.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProfiler] to create a [Profiler].
type Config struct {
	Flags     Flags
	CPU       string
	Heap      string
	Goroutine string
}

// NewConfig returns a new [Config] with default flag names and every
// profile disabled.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			CPU:       "cpu-profile",
			Heap:      "heap-profile",
			Goroutine: "goroutine-profile",
		},
	}
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPU, c.Flags.CPU, "", "write a CPU profile of the run to file")
	flags.StringVar(&c.Heap, c.Flags.Heap, "", "write a heap profile to file when the run ends")
	flags.StringVar(&c.Goroutine, c.Flags.Goroutine, "", "write a goroutine profile to file when the run ends")
}

// RegisterCompletions registers shell completions for profile flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	for _, flag := range []string{c.Flags.CPU, c.Flags.Heap, c.Flags.Goroutine} {
		err := cmd.RegisterFlagCompletionFunc(flag,
			cobra.FixedCompletions([]string{"prof", "pprof"}, cobra.ShellCompDirectiveFilterFileExt))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// NewProfiler creates a [Profiler] using this [Config].
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{config: c}
}
