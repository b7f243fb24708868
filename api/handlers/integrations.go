package handlers

import (
	"net/http"

	"github.com/leadflowhq/lead-services/api/services"
)

func CreateIntegration(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		if !requireManager(w, r) {
			return
		}

		services.CreateIntegrationService(svc, w, r)
	}
}

func GetIntegrations(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetIntegrationsService(svc, w, r)
	}
}

func DeleteIntegration(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		if !requireManager(w, r) {
			return
		}

		services.DeleteIntegrationService(svc, w, r)
	}
}
