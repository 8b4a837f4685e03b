// Package profile writes pprof profiles of a command run.
//
// The CPU profile covers the whole run. Heap and goroutine profiles are
// snapshots taken when it ends, which helps when a large source tree or a
// long watch session uses more memory than expected:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	p := cfg.NewProfiler()
//	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error { return p.Start() }
//	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error { return p.Stop() }
package profile
