package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leadflowhq/lead-services/internal/events"
	"github.com/leadflowhq/lead-services/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the automation loop for follow-ups, bulk outreach and the daily summary",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		// Initialize event publisher
		publisher, err := events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer publisher.Close()

		// Initialize the database
		initDB(publisher)

		service := buildService(publisher)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := log.Logger
		w := worker.New(service, &logger)
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("worker exited")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
