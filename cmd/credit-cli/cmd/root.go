package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"credit-core/internal/bootstrap"
	"credit-core/pkg/config"
	"credit-core/pkg/errno"
	"credit-core/pkg/logger"

	"github.com/spf13/cobra"
)

// deps is built once per invocation by the root pre-run hook.
var deps *bootstrap.Deps

var rootCmd = &cobra.Command{
	Use:   "credit-cli",
	Short: "Operator tool for the BookSocial credit ledger",
	Long: `credit-cli runs payout scheduler passes on demand, resubmits failed
payouts and inspects balances, rates and notification events.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Init()
		logger.Init(config.Global.App.Env)

		d, err := bootstrap.Build(cmd.Context(), config.Global)
		if err != nil {
			return fmt.Errorf("init services: %w", err)
		}
		deps = d
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deps != nil {
			deps.Close()
		}
		logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code, msg := errno.Decode(err)
		fmt.Fprintf(os.Stderr, "error %d: %s\n", code, msg)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
