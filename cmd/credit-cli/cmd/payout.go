package cmd

import (
	"fmt"
	"strconv"

	"credit-core/internal/handler/request"
	"credit-core/internal/model"
	"credit-core/internal/service/payout"
	"credit-core/pkg/validator"

	"github.com/spf13/cobra"
)

var payoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Inspect and repair author payouts",
}

var payoutResubmitCmd = &cobra.Command{
	Use:   "resubmit <payout-id>",
	Short: "Move a FAILED payout back to PENDING",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		p, err := deps.Payouts.Resubmit(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, p)
	},
}

var (
	listAuthor uint64
	listStatus string
	listPage   int
	listSize   int
)

var payoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payouts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := request.ListPayoutsQuery{AuthorID: listAuthor, Status: listStatus, Page: listPage, Size: listSize}
		if err := validator.Validate(&q); err != nil {
			return fmt.Errorf("%s", validator.GetErrorMsg(err))
		}

		f := payout.Filter{AuthorID: q.AuthorID, Status: model.PayoutStatus(q.Status)}
		items, total, err := deps.Payouts.ListPayouts(cmd.Context(), f, model.Page{Number: q.Page, Size: q.Size})
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{"total": total, "items": items})
	},
}

var payoutSummaryCmd = &cobra.Command{
	Use:   "summary <author-id>",
	Short: "Show an author's earnings and payout position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		s, err := deps.Payouts.Summary(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, s)
	},
}

func init() {
	payoutListCmd.Flags().Uint64Var(&listAuthor, "author", 0, "filter by author id")
	payoutListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (PENDING, PROCESSING, COMPLETED, FAILED)")
	payoutListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	payoutListCmd.Flags().IntVar(&listSize, "size", 20, "page size")

	payoutCmd.AddCommand(payoutResubmitCmd, payoutListCmd, payoutSummaryCmd)
	rootCmd.AddCommand(payoutCmd)
}
