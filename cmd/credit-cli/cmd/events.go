package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"credit-core/internal/event"
	"credit-core/internal/service/mq"

	"github.com/spf13/cobra"
)

var tailGroup string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published notification events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print notification events as they are published",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer := mq.NewConsumer(deps.Config, deps.Redis, tailGroup)
		defer consumer.Close()

		err := consumer.Subscribe(ctx, event.TopicNotifications, func(msg *mq.Message) error {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", msg.Key, msg.Payload)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	eventsTailCmd.Flags().StringVar(&tailGroup, "group", "credit-cli", "consumer group")
	eventsCmd.AddCommand(eventsTailCmd)
	rootCmd.AddCommand(eventsCmd)
}
