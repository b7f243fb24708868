package handlers

import (
	"net/http"

	"github.com/leadflowhq/lead-services/api/services"
)

func HealthCheck(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.HealthCheckService(svc, w, r)
	}
}

func VerifyWhatsAppWebhook(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.VerifyWhatsAppWebhookService(svc, w, r)
	}
}

func WhatsAppWebhook(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.WhatsAppWebhookService(svc, w, r)
	}
}

func EmailWebhook(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.EmailWebhookService(svc, w, r)
	}
}

func CalendarWebhook(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CalendarWebhookService(svc, w, r)
	}
}
