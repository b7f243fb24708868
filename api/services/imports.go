package services

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/models"
)

var csvColumns = []string{
	"first_name", "last_name", "company_name", "company_website",
	"phone_number", "linkedin_url", "email",
}

// ImportLeadsService ingests a CSV of leads keyed by email. New rows
// become scored leads, rows matching an untouched lead requeue it and
// rows matching a worked lead only fill in missing fields.
func ImportLeadsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	file, _, err := r.FormFile("file")
	if err != nil {
		// Fall back to a raw CSV body for curl-style uploads.
		if r.Body == nil {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("no CSV payload provided"))
			return
		}
		result, err := svc.importCSV(r, r.Body)
		if err != nil {
			HandleErrResponse(w, http.StatusBadRequest, err)
			return
		}
		WriteResponse(w, http.StatusOK, result)
		return
	}
	defer file.Close()

	result, err := svc.importCSV(r, file)
	if err != nil {
		HandleErrResponse(w, http.StatusBadRequest, err)
		return
	}

	logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("requeued", result.Requeued).
		Int("skipped", result.Skipped).
		Msg("CSV import finished")
	WriteResponse(w, http.StatusOK, result)
}

func (svc *Service) importCSV(r *http.Request, src io.Reader) (*models.ImportResult, error) {
	logger := zerolog.Ctx(r.Context())

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read CSV header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["email"]; !ok {
		return nil, errors.New("CSV must have an 'email' column")
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &models.ImportResult{}
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}

		email := field(row, "email")
		if !IsValidEmail(email) {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid email %q", line, email))
			result.Skipped++
			continue
		}

		incoming := models.Lead{
			FirstName:      field(row, "first_name"),
			LastName:       field(row, "last_name"),
			CompanyName:    field(row, "company_name"),
			CompanyWebsite: field(row, "company_website"),
			PhoneNumber:    field(row, "phone_number"),
			LinkedinURL:    field(row, "linkedin_url"),
			Email:          email,
		}

		existing, err := svc.DB.GetLeadByEmail(email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			// A lookup failure is not "lead missing". Skip the row
			// instead of creating a duplicate.
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}
		if err != nil {
			// Not found means create.
			svc.Scorer.Apply(&incoming)
			svc.assignIfPossible(r, &incoming)

			tx, err := svc.DB.CreateLead(&incoming)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
				result.Skipped++
				continue
			}
			if svc.Publisher != nil {
				if err := svc.Publisher.Publish(models.LeadEvent{
					Action: models.EventLeadCreated,
					LeadID: incoming.ID,
					Status: incoming.Status,
				}); err != nil {
					logger.Warn().Err(err).Msg("Failed to publish import event")
				}
			}
			if err := svc.DB.CommitTransaction(tx); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
				result.Skipped++
				continue
			}
			result.Created++
			continue
		}

		if existing.Status == models.StatusNew {
			// Untouched lead, refresh it with the newer row.
			mergeLeadFields(existing, &incoming, true)
			svc.Scorer.Apply(existing)
			if _, err := svc.updateLeadStatus(existing); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
				result.Skipped++
				continue
			}
			result.Requeued++
			continue
		}

		// Lead already in the funnel, only fill gaps.
		mergeLeadFields(existing, &incoming, false)
		svc.Scorer.Apply(existing)
		if _, err := svc.updateLeadStatus(existing); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}
		result.Updated++
	}

	return result, nil
}

// mergeLeadFields copies incoming fields onto dst. With overwrite set,
// non-empty incoming values win; otherwise only gaps are filled.
func mergeLeadFields(dst, src *models.Lead, overwrite bool) {
	apply := func(dstField *string, srcVal string) {
		if srcVal == "" {
			return
		}
		if overwrite || *dstField == "" {
			*dstField = srcVal
		}
	}
	apply(&dst.FirstName, src.FirstName)
	apply(&dst.LastName, src.LastName)
	apply(&dst.CompanyName, src.CompanyName)
	apply(&dst.CompanyWebsite, src.CompanyWebsite)
	apply(&dst.PhoneNumber, src.PhoneNumber)
	apply(&dst.LinkedinURL, src.LinkedinURL)
}

// ExportLeadsService streams the lead book as CSV.
func ExportLeadsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	filter, err := leadFilterFromQuery(r)
	if err != nil {
		HandleErrResponse(w, http.StatusBadRequest, err)
		return
	}
	if filter.Limit == 0 {
		filter.Limit = 500
	}

	leads, _, err := svc.DB.ListLeads(filter)
	if err != nil {
		logger.Error().Err(err).Msg("Database error exporting leads")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	header := append([]string{}, csvColumns...)
	header = append(header, "status", "score", "tier")
	writer.Write(header)

	for _, lead := range leads {
		writer.Write([]string{
			lead.FirstName, lead.LastName, lead.CompanyName,
			lead.CompanyWebsite, lead.PhoneNumber, lead.LinkedinURL,
			lead.Email, string(lead.Status),
			fmt.Sprintf("%d", lead.Score), string(lead.Tier),
		})
	}
	writer.Flush()
}
