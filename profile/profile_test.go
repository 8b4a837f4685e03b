package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/readmegen/profile"
)

func TestConfig_RegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{"--cpu-profile", "cpu.prof", "--heap-profile", "heap.prof"}))

	assert.Equal(t, "cpu.prof", cfg.CPU)
	assert.Equal(t, "heap.prof", cfg.Heap)
	assert.Empty(t, cfg.Goroutine)
}

func TestConfig_RegisterCompletions(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())

	require.NoError(t, cfg.RegisterCompletions(cmd))

	fn, ok := cmd.GetFlagCompletionFunc("heap-profile")
	require.True(t, ok)

	values, directive := fn(cmd, nil, "")
	assert.Equal(t, []string{"prof", "pprof"}, values)
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
}

func TestProfiler_Disabled(t *testing.T) {
	t.Parallel()

	p := profile.NewConfig().NewProfiler()

	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())
}

// Not parallel: only one CPU profile can run per process.
func TestProfiler_WritesProfiles(t *testing.T) {
	dir := t.TempDir()

	cfg := profile.NewConfig()
	cfg.CPU = filepath.Join(dir, "cpu.prof")
	cfg.Heap = filepath.Join(dir, "heap.prof")
	cfg.Goroutine = filepath.Join(dir, "goroutine.prof")

	p := cfg.NewProfiler()

	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())

	for _, path := range []string{cfg.CPU, cfg.Heap, cfg.Goroutine} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), path)
	}
}

func TestProfiler_BadPath(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	cfg.Heap = filepath.Join(t.TempDir(), "missing", "heap.prof")

	err := cfg.NewProfiler().Stop()
	require.ErrorIs(t, err, profile.ErrProfile)
}
