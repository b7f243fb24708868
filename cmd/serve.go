package cmd

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leadflowhq/lead-services/api/handlers"
	"github.com/leadflowhq/lead-services/api/middleware"
	"github.com/leadflowhq/lead-services/internal/events"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
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

		// Create routes
		r := mux.NewRouter()

		// Register the API routes behind the gateway JWT
		api := r.PathPrefix(appCfg.BasePath).Subrouter()
		api.Use(middleware.WithLogger)
		api.Use(middleware.JWTMiddleware)

		// Lead routes
		api.HandleFunc("/leads", handlers.CreateLead(service)).Methods(http.MethodPost)
		api.HandleFunc("/leads", handlers.GetLeads(service)).Methods(http.MethodGet)
		api.HandleFunc("/leads/import", handlers.ImportLeads(service)).Methods(http.MethodPost)
		api.HandleFunc("/leads/export", handlers.ExportLeads(service)).Methods(http.MethodGet)
		api.HandleFunc("/leads/{lead-id}", handlers.GetLead(service)).Methods(http.MethodGet)
		api.HandleFunc("/leads/{lead-id}", handlers.UpdateLead(service)).Methods(http.MethodPut)
		api.HandleFunc("/leads/{lead-id}", handlers.PatchLead(service)).Methods(http.MethodPatch)
		api.HandleFunc("/leads/{lead-id}", handlers.DeleteLead(service)).Methods(http.MethodDelete)
		api.HandleFunc("/leads/{lead-id}/rescore", handlers.RescoreLead(service)).Methods(http.MethodPost)
		api.HandleFunc("/leads/{lead-id}/assign", handlers.AssignLead(service)).Methods(http.MethodPost)

		// Conversation routes
		api.HandleFunc("/leads/{lead-id}/conversations", handlers.GetConversations(service)).Methods(http.MethodGet)
		api.HandleFunc("/leads/{lead-id}/messages", handlers.SendMessage(service)).Methods(http.MethodPost)

		// Meeting routes
		api.HandleFunc("/leads/{lead-id}/meetings", handlers.GetMeetings(service)).Methods(http.MethodGet)
		api.HandleFunc("/leads/{lead-id}/meetings", handlers.CreateMeeting(service)).Methods(http.MethodPost)
		api.HandleFunc("/calendar/slots", handlers.GetSlots(service)).Methods(http.MethodGet)

		// Rep routes
		api.HandleFunc("/reps", handlers.GetReps(service)).Methods(http.MethodGet)
		api.HandleFunc("/reps", handlers.CreateRep(service)).Methods(http.MethodPost)
		api.HandleFunc("/reps/{rep-id}", handlers.GetRep(service)).Methods(http.MethodGet)
		api.HandleFunc("/reps/{rep-id}", handlers.UpdateRep(service)).Methods(http.MethodPut)
		api.HandleFunc("/reps/{rep-id}", handlers.DeleteRep(service)).Methods(http.MethodDelete)

		// Analytics routes
		api.HandleFunc("/stats/summary", handlers.GetStatsSummary(service)).Methods(http.MethodGet)

		// Integration credential routes
		api.HandleFunc("/integrations", handlers.CreateIntegration(service)).Methods(http.MethodPost)
		api.HandleFunc("/integrations", handlers.GetIntegrations(service)).Methods(http.MethodGet)
		api.HandleFunc("/integrations/{provider}", handlers.DeleteIntegration(service)).Methods(http.MethodDelete)

		// Webhooks sit outside the JWT, external platforms authenticate
		// with their own schemes.
		webhooks := r.PathPrefix("/webhook").Subrouter()
		webhooks.Use(middleware.WithLogger)
		webhooks.HandleFunc("/health", handlers.HealthCheck(service)).Methods(http.MethodGet)
		webhooks.HandleFunc("/whatsapp", handlers.VerifyWhatsAppWebhook(service)).Methods(http.MethodGet)
		webhooks.HandleFunc("/whatsapp", handlers.WhatsAppWebhook(service)).Methods(http.MethodPost)
		webhooks.HandleFunc("/email", handlers.EmailWebhook(service)).Methods(http.MethodPost)
		webhooks.HandleFunc("/calendar", handlers.CalendarWebhook(service)).Methods(http.MethodPost)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			r); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
