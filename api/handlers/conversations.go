package handlers

import (
	"net/http"

	"github.com/leadflowhq/lead-services/api/services"
)

func GetConversations(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetConversationsService(svc, w, r)
	}
}

func SendMessage(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.SendMessageService(svc, w, r)
	}
}
