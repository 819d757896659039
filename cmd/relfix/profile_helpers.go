package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonseale44/Clarafi/internal/prof"
)

// setupProfiling enables the profilers named by --cpu-profile and
// --mem-profile. The cleanup function is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}

	session, err := prof.Start(prof.Config{CPUPath: cpuProfile, MemPath: memProfile})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "relfix: %v\n", err)
		}
	}, nil
}
