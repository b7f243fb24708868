package handlers

import (
	"errors"
	"net/http"

	"github.com/leadflowhq/lead-services/api/middleware"
	"github.com/leadflowhq/lead-services/api/services"
	"github.com/leadflowhq/lead-services/internal/authn"
)

func GetReps(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetRepsService(svc, w, r)
	}
}

func GetRep(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetRepService(svc, w, r)
	}
}

func CreateRep(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		if !requireManager(w, r) {
			return
		}

		services.CreateRepService(svc, w, r)
	}
}

func UpdateRep(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		if !requireManager(w, r) {
			return
		}

		services.UpdateRepService(svc, w, r)
	}
}

func DeleteRep(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		if !requireManager(w, r) {
			return
		}

		services.DeleteRepService(svc, w, r)
	}
}

// requireManager gates roster and integration-key changes behind the
// sales_manager role.
func requireManager(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		services.HandleErrResponse(w, http.StatusUnauthorized, errors.New("unauthorized: invalid claims"))
		return false
	}

	if !claims.HasRole("sales_manager") {
		services.HandleErrResponse(w, http.StatusForbidden, errors.New("forbidden: sales manager use only"))
		return false
	}
	return true
}
