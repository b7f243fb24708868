package services

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// GetStatsSummaryService reports funnel counts and send quota state.
func GetStatsSummaryService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	summary, err := svc.DB.GetStatsSummary(time.Now())
	if err != nil {
		logger.Error().Err(err).Msg("Database error building stats summary")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if svc.Quota != nil {
		usage, err := svc.Quota.Usage(r.Context())
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read quota usage")
		} else {
			summary.WhatsApp = usage
		}
	}

	WriteResponse(w, http.StatusOK, *summary)
}
