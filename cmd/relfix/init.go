package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonseale44/Clarafi/internal/config"
	"github.com/jonseale44/Clarafi/internal/fix"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a relfix.toml with the built-in defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing relfix.toml")
}

// runInit writes relfix.toml into dir (the working directory by default),
// refusing to replace an existing one without --force.
func runInit(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		return err
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, config.FileName)
	if _, err := os.Stat(manifestPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", manifestPath)
	}

	cfg := config.Default(target)
	var buf bytes.Buffer
	buf.WriteString("# relfix configuration\n\n")
	if err := cfg.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", config.FileName, err)
	}
	if err := fix.WriteFileAtomic(manifestPath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", manifestPath)
	return nil
}
