package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leadflowhq/lead-services/internal/events"
	"github.com/leadflowhq/lead-services/models"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer to process lead lifecycle events",
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

		// Initialize event consumer
		consumer, err := events.NewEventConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.TopicConsumer, appCfg.Pulsar.Subscription)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		logger := log.Logger
		ctx := logger.WithContext(context.Background())

		// Consume messages
		for {
			event, msg, err := consumer.Receive(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Error receiving message")
				if msg != nil {
					consumer.Nack(msg)
				}
				continue
			}

			log.Info().
				Str("action", event.Action).
				Str("lead_id", event.LeadID.String()).
				Str("status", string(event.Status)).
				Msg("Lead event received")

			switch event.Action {
			case models.EventLeadCreated:
				// Fresh leads get their first touch off the hot path.
				lead, err := leadDB.GetLead(event.LeadID)
				if err != nil {
					log.Error().Err(err).Str("lead_id", event.LeadID.String()).Msg("Failed to load lead for outreach")
					consumer.Nack(msg)
					continue
				}
				if _, err := service.StartOutreach(ctx, lead); err != nil {
					log.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("Outreach failed")
					consumer.Nack(msg)
					continue
				}

			case models.EventLeadResponded:
				// Responses get surfaced to the manager chat straight away.
				if service.Telegram != nil {
					text := fmt.Sprintf("Lead %s responded over %s, now %s", event.LeadID, event.Channel, event.Status)
					if err := service.Telegram.Notify(ctx, text); err != nil {
						log.Warn().Err(err).Msg("Failed to notify manager chat")
					}
				}
			}

			consumer.Ack(msg)
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
