package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// ErrProfile wraps failures to write a profile.
var ErrProfile = errors.New("profile")

// Profiler records the profiles enabled in its [Config] around one run.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	config  *Config
	cpuFile *os.File
}

// Start begins CPU profiling when enabled. Call [Profiler.Stop] when the run
// is complete.
func (p *Profiler) Start() error {
	if p.config.CPU == "" || p.cpuFile != nil {
		return nil
	}

	f, err := os.Create(p.config.CPU)
	if err != nil {
		return fmt.Errorf("%w: create cpu profile: %w", ErrProfile, err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		return fmt.Errorf("%w: start cpu profile: %w", ErrProfile, errors.Join(err, f.Close()))
	}

	p.cpuFile = f

	return nil
}

// Stop ends CPU profiling and writes the enabled snapshot profiles.
func (p *Profiler) Stop() error {
	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: close cpu profile: %w", ErrProfile, err))
		}

		p.cpuFile = nil
	}

	if p.config.Heap != "" {
		runtime.GC()

		errs = append(errs, writeProfile("heap", p.config.Heap))
	}

	if p.config.Goroutine != "" {
		errs = append(errs, writeProfile("goroutine", p.config.Goroutine))
	}

	return errors.Join(errs...)
}

func writeProfile(name, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s profile: %w", ErrProfile, name, err)
	}

	err = pprof.Lookup(name).WriteTo(f, 0)

	closeErr := f.Close()
	if err != nil || closeErr != nil {
		return fmt.Errorf("%w: write %s profile: %w", ErrProfile, name, errors.Join(err, closeErr))
	}

	return nil
}
