// Package log builds the [log/slog] handlers used by the readmegen
// commands.
//
// Three output formats are supported: [FormatText] for terminals,
// [FormatLogfmt] and [FormatJSON] for machines. [Config] binds the level
// and format to CLI flags:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	if err != nil {
//		return err
//	}
//
//	logger := slog.New(handler)
package log
