package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberguard/awareness-service/internal/config"
	"github.com/cyberguard/awareness-service/internal/events"
	"github.com/cyberguard/awareness-service/internal/utils"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published progress events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print progress events from Kafka as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := utils.ToSlogLogger(utils.NewLogger(cfg.Environment, cfg.LogLevel))

		subscriber, err := events.NewKafkaSubscriber(cfg.Events.SubscriberConfig(group, logger))
		if err != nil {
			return err
		}
		defer subscriber.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		return events.Consume(ctx, subscriber, cfg.Events.ProgressTopic, logger, func(e *events.DecodedEvent) error {
			if asJSON {
				line, err := json.Marshal(e)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(line))
				return err
			}
			_, err := fmt.Fprintf(out, "%s  %-20s client=%s user=%s %s\n",
				e.Timestamp.Local().Format(time.DateTime), e.Type, e.ClientID, formatUser(e.UserID), e.Data)
			return err
		})
	},
}

func init() {
	eventsTailCmd.Flags().String("group", "cyberguard-tail", "Kafka consumer group")
	eventsTailCmd.Flags().Bool("json", false, "Print raw JSON events")

	eventsCmd.AddCommand(eventsTailCmd)
}

func formatUser(id *uint) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}
