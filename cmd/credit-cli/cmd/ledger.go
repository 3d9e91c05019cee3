package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <user-id>",
	Short: "Print a user's credit balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		balance, err := deps.Wallets.GetBalance(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d: %d credits\n", id, balance)
		return nil
	},
}

var rateFresh bool

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Print the current USD value of one credit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rateFresh {
			deps.Rates.Invalidate(cmd.Context())
		}
		rate, err := deps.Rates.CurrentRate(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, rate)
	},
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List purchasable credit packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkgs, err := deps.Catalog.ListActivePackages(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, pkgs)
	},
}

func init() {
	rateCmd.Flags().BoolVar(&rateFresh, "fresh", false, "drop the cached rate before reading")
	rootCmd.AddCommand(balanceCmd, rateCmd, packagesCmd)
}
