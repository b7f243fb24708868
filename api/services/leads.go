package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/internal/distribution"
	"github.com/leadflowhq/lead-services/models"
)

// leadFilterFromQuery parses the shared listing filters. Listing and
// CSV export take the same query string.
func leadFilterFromQuery(r *http.Request) (models.LeadFilter, error) {
	filter := models.LeadFilter{
		Status: models.LeadStatus(r.URL.Query().Get("status")),
		Tier:   models.LeadTier(r.URL.Query().Get("tier")),
		Query:  r.URL.Query().Get("q"),
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return filter, fmt.Errorf("unknown status %q", filter.Status)
	}
	if raw := r.URL.Query().Get("assigned_to"); raw != "" {
		repID, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("assigned_to must be a UUID")
		}
		filter.AssignedTo = &repID
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return filter, nil
}

// GetLeadsService retrieves leads matching the query string filters.
func GetLeadsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	filter, err := leadFilterFromQuery(r)
	if err != nil {
		HandleErrResponse(w, http.StatusBadRequest, err)
		return
	}

	leads, total, err := svc.DB.ListLeads(filter)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving leads")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if leads == nil {
		leads = []models.Lead{}
	}

	WriteResponse(w, http.StatusOK, models.LeadsResponse{Leads: leads, Total: total})
}

// GetLeadService retrieves a single lead.
func GetLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	lead, err := svc.DB.GetLead(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *lead)
}

// CreateLeadService validates and stores a new lead, scores it and
// assigns it to a rep when one has capacity.
func CreateLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}

	if !IsValidEmail(lead.Email) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
		return
	}
	if lead.Status != "" && !models.ValidStatus(lead.Status) {
		HandleErrResponse(w, http.StatusBadRequest, fmt.Errorf("unknown status %q", lead.Status))
		return
	}

	exists, err := svc.DB.CheckLeadExists(lead.Email)
	if err != nil {
		logger.Error().Err(err).Msg("Database error checking lead existence")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if exists {
		WriteResponse(w, http.StatusConflict, models.ErrorResponse{Error: "a lead with this email already exists"})
		return
	}

	svc.Scorer.Apply(&lead)
	svc.assignIfPossible(r, &lead)

	tx, err := svc.DB.CreateLead(&lead)
	if err != nil {
		logger.Error().Err(err).Msg("Database error creating lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Publish(models.LeadEvent{
			Action: models.EventLeadCreated,
			LeadID: lead.ID,
			Status: lead.Status,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to publish lead created event")
			tx.Rollback()
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
	}

	if err := svc.DB.CommitTransaction(tx); err != nil {
		logger.Error().Err(err).Msg("Failed to commit lead creation")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("lead_id", lead.ID.String()).Int("score", lead.Score).Msg("Lead created")
	WriteResponse(w, http.StatusCreated, lead, svc.Config.BasePath+"/leads/"+lead.ID.String())
}

// assignIfPossible picks a rep for the lead. Failure to assign never
// blocks lead creation.
func (svc *Service) assignIfPossible(r *http.Request, lead *models.Lead) {
	logger := zerolog.Ctx(r.Context())

	reps, err := svc.DB.ListReps()
	if err != nil {
		logger.Warn().Err(err).Msg("Could not list reps for assignment")
		return
	}

	rep, err := distribution.Pick(reps, svc.Config.Distribution.DefaultCapacity)
	if err != nil {
		logger.Debug().Msg("No rep available, lead stays unassigned")
		return
	}
	lead.AssignedTo = &rep.ID
}

// UpdateLeadService replaces all mutable fields of a lead.
func UpdateLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	var payload models.Lead
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if !IsValidEmail(payload.Email) {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
		return
	}
	if !models.ValidStatus(payload.Status) {
		HandleErrResponse(w, http.StatusBadRequest, fmt.Errorf("unknown status %q", payload.Status))
		return
	}

	existing, err := svc.DB.GetLead(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	payload.ID = existing.ID
	payload.CreatedAt = existing.CreatedAt
	svc.Scorer.Apply(&payload)

	updated, err := svc.updateLeadStatus(&payload)
	if err != nil {
		logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("Database error updating lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *updated)
}

// PatchLeadService applies a partial update. Only fields present in
// the payload change.
func PatchLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	var patch struct {
		FirstName        *string            `json:"first_name"`
		LastName         *string            `json:"last_name"`
		CompanyName      *string            `json:"company_name"`
		CompanyWebsite   *string            `json:"company_website"`
		PhoneNumber      *string            `json:"phone_number"`
		LinkedinURL      *string            `json:"linkedin_url"`
		Email            *string            `json:"email"`
		EmailVerified    *bool              `json:"email_verified"`
		Status           *models.LeadStatus `json:"status"`
		AssignedTo       *uuid.UUID         `json:"assigned_to"`
		NextFollowUpDate *string            `json:"next_follow_up_date"`
		CustomData       json.RawMessage    `json:"custom_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}

	lead, err := svc.DB.GetLead(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if patch.FirstName != nil {
		lead.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		lead.LastName = *patch.LastName
	}
	if patch.CompanyName != nil {
		lead.CompanyName = *patch.CompanyName
	}
	if patch.CompanyWebsite != nil {
		lead.CompanyWebsite = *patch.CompanyWebsite
	}
	if patch.PhoneNumber != nil {
		lead.PhoneNumber = *patch.PhoneNumber
	}
	if patch.LinkedinURL != nil {
		lead.LinkedinURL = *patch.LinkedinURL
	}
	if patch.Email != nil {
		if !IsValidEmail(*patch.Email) {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("a valid email address is required"))
			return
		}
		lead.Email = *patch.Email
	}
	if patch.EmailVerified != nil {
		lead.EmailVerified = *patch.EmailVerified
	}
	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			HandleErrResponse(w, http.StatusBadRequest, fmt.Errorf("unknown status %q", *patch.Status))
			return
		}
		lead.Status = *patch.Status
	}
	if patch.AssignedTo != nil {
		lead.AssignedTo = patch.AssignedTo
	}
	if patch.CustomData != nil {
		lead.CustomData = patch.CustomData
	}

	svc.Scorer.Apply(lead)

	updated, err := svc.updateLeadStatus(lead)
	if err != nil {
		logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("Database error patching lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *updated)
}

// DeleteLeadService removes a lead and its history.
func DeleteLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	if err := svc.DB.DeleteLead(leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("Database error deleting lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Publish(models.LeadEvent{
			Action: models.EventLeadDeleted,
			LeadID: leadID,
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to publish lead deleted event")
		}
	}

	logger.Info().Str("lead_id", leadID.String()).Msg("Lead deleted")
	WriteResponse(w, http.StatusNoContent, nil)
}

// RescoreLeadService recomputes the lead's score and tier on demand.
func RescoreLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	lead, err := svc.DB.GetLead(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	svc.Scorer.Apply(lead)

	updated, err := svc.updateLeadStatus(lead)
	if err != nil {
		logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("Database error rescoring lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *updated)
}

// AssignLeadService assigns a lead to a specific rep, or to the best
// available one when no rep is named.
func AssignLeadService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	var payload struct {
		RepID *uuid.UUID `json:"rep_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
			return
		}
	}

	lead, err := svc.DB.GetLead(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	var repID uuid.UUID
	if payload.RepID != nil {
		rep, err := svc.DB.GetRep(*payload.RepID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "rep not found"})
				return
			}
			logger.Error().Err(err).Msg("Database error retrieving rep")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		repID = rep.ID
	} else {
		reps, err := svc.DB.ListReps()
		if err != nil {
			logger.Error().Err(err).Msg("Database error listing reps")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		rep, err := distribution.Pick(reps, svc.Config.Distribution.DefaultCapacity)
		if err != nil {
			WriteResponse(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
			return
		}
		repID = rep.ID
	}

	if err := svc.DB.AssignLead(lead.ID, repID); err != nil {
		logger.Error().Err(err).Msg("Database error assigning lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	lead.AssignedTo = &repID
	logger.Info().Str("lead_id", lead.ID.String()).Str("rep_id", repID.String()).Msg("Lead assigned")
	WriteResponse(w, http.StatusOK, *lead)
}
