package handlers

import (
	"net/http"

	"github.com/leadflowhq/lead-services/api/services"
)

func GetMeetings(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetMeetingsService(svc, w, r)
	}
}

func CreateMeeting(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateMeetingService(svc, w, r)
	}
}

func GetSlots(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetSlotsService(svc, w, r)
	}
}
