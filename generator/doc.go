// Package generator writes one document per Python source file of a
// directory.
//
// A [Project] holds the settings. It is usually read from a
// [ProjectFileName] file and overridden by command line flags through
// [Config]:
//
//	cfg := generator.NewConfig()
//	cfg.RegisterFlags(cmd.Flags())
//
//	p, err := cfg.Resolve(cmd.Flags(), dir)
//	if err != nil {
//		return err
//	}
//
//	g, err := cfg.NewGenerator(p, generator.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	report, err := g.Generate(ctx, "")
//
// Files are processed in parallel. Call graph groups are drawn before the
// documents so each document can link to the image of its group. With a
// cache configured, documents whose inputs did not change are left alone.
//
// [Generator.Watch] keeps running after the first generation and
// regenerates the documents of files as they change.
package generator
