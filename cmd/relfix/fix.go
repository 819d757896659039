package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonseale44/Clarafi/internal/driver"
	"github.com/jonseale44/Clarafi/internal/observ"
	"github.com/jonseale44/Clarafi/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [schema.ts...]",
	Short: "Comment out relations that reference nullable foreign keys",
	Long: `Rewrite each schema file in place. Without arguments the paths from
relfix.toml are used (shared/schema.ts by default). Only the schema files are
touched. With --journal (or [journal] enabled = true) the original content is
recorded before every write, so "relfix restore" can undo it.`,
	Args: cobra.ArbitraryArgs,
	RunE: runFix,
}

func init() {
	addRewriteFlags(fixCmd)
	fixCmd.Flags().Bool("dry-run", false, "compute the changes without writing")
	fixCmd.Flags().Bool("journal", false, "record a backup before writing (overrides [journal] enabled)")
	fixCmd.Flags().Bool("no-journal", false, "do not record a backup, even if relfix.toml enables it")
	fixCmd.Flags().Bool("watch", false, "keep running and re-apply whenever a file changes")
}

func runFix(cmd *cobra.Command, args []string) error {
	rf, err := readRewriteFlags(cmd)
	if err != nil {
		return err
	}
	rs, err := readRunSettings(cmd)
	if err != nil {
		return err
	}
	// у корневой команды нет этих флагов
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	withJournal, _ := cmd.Flags().GetBool("journal")
	noJournal, _ := cmd.Flags().GetBool("no-journal")
	if withJournal && noJournal {
		return fmt.Errorf("--journal and --no-journal are mutually exclusive")
	}
	watch, _ := cmd.Flags().GetBool("watch")

	cfg, err := loadConfig(cmd, rf)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	if withJournal {
		cfg.Journal.Enabled = true
	}
	if noJournal {
		cfg.Journal.Enabled = false
	}
	opts, err := driverOptions(cmd, &cfg, dryRun)
	if err != nil {
		return err
	}
	timer := observ.NewTimer()
	opts.Timer = timer
	paths := targetPaths(&cfg, args)

	if watch {
		if rf.format == "json" {
			return fmt.Errorf("--watch cannot be combined with --format json")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		// прогресс-вью в режиме наблюдения не показываем
		rs.ui = uiModeOff
		return driver.Watch(ctx, paths, driver.WatchOptions{Options: opts}, func(fs *source.FileSet, results []driver.FileResult) {
			if err := report(cmd.OutOrStdout(), cmd.ErrOrStderr(), fs, results, &cfg, rf, rs, dryRun, timer); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "relfix: %v\n", err)
			}
		})
	}

	fs, results, err := execute(cmd.Context(), "relfix fix", paths, opts, rs)
	if err != nil {
		return err
	}
	if err := report(cmd.OutOrStdout(), cmd.ErrOrStderr(), fs, results, &cfg, rf, rs, dryRun, timer); err != nil {
		return err
	}
	return failure(results)
}
