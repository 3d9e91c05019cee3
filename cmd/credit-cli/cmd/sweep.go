package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one payout scheduler pass now",
	Long: `Runs a single scheduler pass under the same distributed lock the
server uses, so it never overlaps with a scheduled run.`,
}

func passCommand(use, short string, run func(ctx context.Context) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !run(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s pass skipped: another instance holds the lock\n", use)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s pass finished\n", use)
			return nil
		},
	}
}

func init() {
	sweepCmd.AddCommand(
		passCommand("submit", "Submit PENDING payouts to the payout gateway", func(ctx context.Context) bool {
			return deps.Cron.RunSubmitPass(ctx)
		}),
		passCommand("poll", "Reconcile PROCESSING payouts with the provider", func(ctx context.Context) bool {
			return deps.Cron.RunPollPass(ctx)
		}),
		passCommand("auto", "Create payouts for authors with auto payout due", func(ctx context.Context) bool {
			return deps.Cron.RunAutoPayoutPass(ctx)
		}),
	)
	rootCmd.AddCommand(sweepCmd)
}
