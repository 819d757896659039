package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonseale44/Clarafi/internal/fix"
	"github.com/jonseale44/Clarafi/internal/journal"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [flags] [schema.ts...]",
	Short: "Undo the last relfix write from the journal",
	Long: `Restore writes back the content a file had before the most recent relfix
write and removes that journal entry, so repeated restores walk further back.
A file edited since that write is refused unless --force is given.`,
	Args: cobra.ArbitraryArgs,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().Bool("force", false, "restore even if the file changed since relfix wrote it")
	restoreCmd.Flags().Bool("list", false, "list journal entries instead of restoring")
}

func runRestore(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, rewriteFlags{})
	if err != nil {
		return err
	}
	// restore никогда не создаёт журнал сам
	if _, err := os.Stat(cfg.JournalDir()); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no journal at %s (writes are recorded only with --journal or [journal] enabled = true)", cfg.JournalDir())
	}
	j, err := journal.Open(cfg.JournalDir())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, path := range targetPaths(&cfg, args) {
		if list {
			entries, err := j.Entries(path)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "%s: no journal entries\n", path)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s: %s  %d commented  %v\n", path, e.Time.Format(time.RFC3339), e.Matched, e.Fields)
			}
			continue
		}

		entry, err := j.Restore(path, force, fix.WriteFileAtomic)
		switch {
		case errors.Is(err, journal.ErrNoEntry):
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: nothing to restore\n", path)
			failed++
		case errors.Is(err, journal.ErrModified):
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: changed since relfix wrote it (use --force)\n", path)
			failed++
		case err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
		case !quiet:
			fmt.Fprintf(out, "%s: restored content from %s\n", path, entry.Time.Format(time.RFC3339))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) not restored", failed)
	}
	return nil
}
