package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/internal/secrets"
	"github.com/leadflowhq/lead-services/models"
)

// CreateIntegrationService stores an API credential for an enrichment
// or CRM provider. Keys live in Secrets Manager, never the database.
func CreateIntegrationService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if svc.Secrets == nil {
		WriteResponse(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "secrets store is not configured"})
		return
	}

	var payload struct {
		Provider string `json:"provider"`
		Key      string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if payload.Provider == "" || payload.Key == "" {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("fields 'provider' and 'key' are required"))
		return
	}

	if err := svc.Secrets.Put(r.Context(), payload.Provider, payload.Key); err != nil {
		logger.Error().Err(err).Str("provider", payload.Provider).Msg("Failed to store integration credential")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("provider", payload.Provider).Msg("Integration credential stored")
	WriteResponse(w, http.StatusCreated, nil)
}

// GetIntegrationsService lists configured providers without exposing
// the stored keys.
func GetIntegrationsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if svc.Secrets == nil {
		WriteResponse(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "secrets store is not configured"})
		return
	}

	providers, err := svc.Secrets.List(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list integration credentials")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, map[string][]string{"providers": providers})
}

// DeleteIntegrationService removes a provider's credential.
func DeleteIntegrationService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if svc.Secrets == nil {
		WriteResponse(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "secrets store is not configured"})
		return
	}

	provider := mux.Vars(r)["provider"]

	if err := svc.Secrets.Delete(r.Context(), provider); err != nil {
		if errors.Is(err, secrets.ErrProviderNotFound) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "provider not found"})
			return
		}
		logger.Error().Err(err).Str("provider", provider).Msg("Failed to delete integration credential")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("provider", provider).Msg("Integration credential deleted")
	WriteResponse(w, http.StatusNoContent, nil)
}
