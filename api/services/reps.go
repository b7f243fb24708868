package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/models"
)

// GetRepsService returns the rep roster with live assignment counts.
func GetRepsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	reps, err := svc.DB.ListReps()
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving reps")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if reps == nil {
		reps = []models.SalesRep{}
	}

	WriteResponse(w, http.StatusOK, models.RepsResponse{Reps: reps})
}

// CreateRepService adds a rep to the roster.
func CreateRepService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var rep models.SalesRep
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if rep.Name == "" {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if !IsValidEmail(rep.Email) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
		return
	}
	if rep.LeadCapacity <= 0 {
		rep.LeadCapacity = svc.Config.Distribution.DefaultCapacity
	}
	rep.Active = true

	if err := svc.DB.CreateRep(&rep); err != nil {
		logger.Error().Err(err).Msg("Database error creating rep")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("rep_id", rep.ID.String()).Msg("Rep created")
	WriteResponse(w, http.StatusCreated, rep, svc.Config.BasePath+"/reps/"+rep.ID.String())
}

// GetRepService retrieves a single rep.
func GetRepService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	repID, ok := pathUUID(r, "rep-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("rep id must be a UUID"))
		return
	}

	rep, err := svc.DB.GetRep(repID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "rep not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving rep")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *rep)
}

// UpdateRepService replaces a rep's mutable fields.
func UpdateRepService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	repID, ok := pathUUID(r, "rep-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("rep id must be a UUID"))
		return
	}

	var payload models.SalesRep
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if !IsValidEmail(payload.Email) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
		return
	}

	payload.ID = repID
	if err := svc.DB.UpdateRep(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "rep not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error updating rep")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	rep, err := svc.DB.GetRep(repID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving rep")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *rep)
}

// DeleteRepService removes a rep. Their leads fall back to unassigned.
func DeleteRepService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	repID, ok := pathUUID(r, "rep-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("rep id must be a UUID"))
		return
	}

	if err := svc.DB.DeleteRep(repID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "rep not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error deleting rep")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("rep_id", repID.String()).Msg("Rep deleted")
	WriteResponse(w, http.StatusNoContent, nil)
}
