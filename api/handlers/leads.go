package handlers

import (
	"net/http"

	"github.com/leadflowhq/lead-services/api/services"
	_ "github.com/lib/pq"
)

func GetLeads(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetLeadsService(svc, w, r)
	}
}

func GetLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetLeadService(svc, w, r)
	}
}

func CreateLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateLeadService(svc, w, r)
	}
}

func UpdateLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateLeadService(svc, w, r)
	}
}

func PatchLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.PatchLeadService(svc, w, r)
	}
}

func DeleteLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteLeadService(svc, w, r)
	}
}

func RescoreLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RescoreLeadService(svc, w, r)
	}
}

func AssignLead(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.AssignLeadService(svc, w, r)
	}
}

func ImportLeads(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ImportLeadsService(svc, w, r)
	}
}

func ExportLeads(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ExportLeadsService(svc, w, r)
	}
}
