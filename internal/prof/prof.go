// Package prof wraps runtime/pprof for the --cpu-profile and --mem-profile
// flags.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Config names the profile outputs; empty paths are skipped.
type Config struct {
	CPUPath string
	MemPath string
}

// Session is an active profiling run.
type Session struct {
	once    sync.Once
	cpuFile *os.File
	memPath string
	err     error
}

// Start begins CPU profiling when cfg.CPUPath is set. The heap profile is
// written by Stop, so it reflects the whole run.
func Start(cfg Config) (*Session, error) {
	s := &Session{memPath: cfg.MemPath}
	if cfg.CPUPath == "" {
		return s, nil
	}
	f, err := os.Create(cfg.CPUPath)
	if err != nil {
		return nil, fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cpu profile: %w", err)
	}
	s.cpuFile = f
	return s, nil
}

// Stop ends CPU profiling and writes the heap profile. Safe to call more
// than once; later calls return the first result.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		var errs []error
		if s.cpuFile != nil {
			pprof.StopCPUProfile()
			if err := s.cpuFile.Close(); err != nil {
				errs = append(errs, fmt.Errorf("cpu profile: %w", err))
			}
		}
		if s.memPath != "" {
			if err := writeHeap(s.memPath); err != nil {
				errs = append(errs, fmt.Errorf("heap profile: %w", err))
			}
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
