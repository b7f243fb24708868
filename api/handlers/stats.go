package handlers

import (
	"net/http"

	"github.com/leadflowhq/lead-services/api/services"
)

func GetStatsSummary(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetStatsSummaryService(svc, w, r)
	}
}
