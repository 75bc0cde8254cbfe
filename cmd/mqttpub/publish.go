package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vitalvas/mqttpub"
)

type publishFlags struct {
	topic    string
	message  string
	qos      uint8
	retain   bool
	count    int
	interval time.Duration
}

func newPublishCmd(global *globalFlags) *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Connect, publish one or more messages and disconnect",
		Example: `  mqttpub publish --host 192.168.1.10 --topic some_topic --message "my message"
  mqttpub publish --topic sensors/temp --message 21.5 --qos 1 --retain --count 10 --interval 1s`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if flags.topic == "" {
				return fmt.Errorf("--topic must be set")
			}
			if err := mqttpub.ValidateTopicName(flags.topic); err != nil {
				return fmt.Errorf("--topic %q: %w", flags.topic, err)
			}
			if !mqttpub.QoS(flags.qos).Valid() {
				return fmt.Errorf("--qos must be 0, 1 or 2, got %d", flags.qos)
			}
			if flags.count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runPublish(ctx, global, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.topic, "topic", "t", "", "Topic to publish to")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "Message payload")
	cmd.Flags().Uint8VarP(&flags.qos, "qos", "q", 0, "Requested QoS level (0, 1 or 2)")
	cmd.Flags().BoolVarP(&flags.retain, "retain", "r", false, "Set the RETAIN flag")
	cmd.Flags().IntVar(&flags.count, "count", 1, "Number of messages to publish")
	cmd.Flags().DurationVar(&flags.interval, "interval", time.Second, "Delay between messages when --count > 1")

	return cmd
}

func runPublish(ctx context.Context, global *globalFlags, flags *publishFlags) error {
	client, err := global.newClient()
	if err != nil {
		return err
	}

	conn, err := client.Connect(ctx, global.keepAlive)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	qos := mqttpub.QoS(flags.qos)
	for i := range flags.count {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(flags.interval):
			}
		}

		if err := conn.PublishString(flags.topic, flags.message, flags.retain, qos); err != nil {
			return err
		}
		log.Info().Str("topic", flags.topic).Int("n", i+1).Msg("published")
	}

	return nil
}
