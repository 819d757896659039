package main

import (
	"github.com/spf13/cobra"

	"github.com/jonseale44/Clarafi/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [schema.ts...]",
	Short: "Report which relations would be commented out, without writing",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCheck,
}

func init() {
	addRewriteFlags(checkCmd)
	checkCmd.Flags().Bool("strict", false, "exit with status 1 when any file would change")
}

func runCheck(cmd *cobra.Command, args []string) error {
	rf, err := readRewriteFlags(cmd)
	if err != nil {
		return err
	}
	rs, err := readRunSettings(cmd)
	if err != nil {
		return err
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return err
	}

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

	opts, err := driverOptions(cmd, &cfg, true)
	if err != nil {
		return err
	}
	timer := observ.NewTimer()
	opts.Timer = timer

	fs, results, err := execute(cmd.Context(), "relfix check", targetPaths(&cfg, args), opts, rs)
	if err != nil {
		return err
	}
	if err := report(cmd.OutOrStdout(), cmd.ErrOrStderr(), fs, results, &cfg, rf, rs, true, timer); err != nil {
		return err
	}
	if err := failure(results); err != nil {
		return err
	}
	if strict {
		for _, r := range results {
			if r.Result != nil && r.Result.Changed {
				return errChangesPending
			}
		}
	}
	return nil
}
