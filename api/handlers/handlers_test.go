package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/lead-services/api/middleware"
	"github.com/leadflowhq/lead-services/api/services"
	"github.com/leadflowhq/lead-services/internal/authn"
)

func requestWithRoles(method, target, body string, roles []string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := authn.Claims{Username: "rep-amira", Roles: roles}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

func TestCreateRepRequiresManagerRole(t *testing.T) {
	svc := &services.Service{}

	rec := httptest.NewRecorder()
	CreateRep(svc)(rec, requestWithRoles("POST", "/api/reps", `{}`, []string{"sales_rep"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateIntegrationRequiresManagerRole(t *testing.T) {
	svc := &services.Service{}
	body := `{"provider":"hunter","key":"key-123"}`

	rec := httptest.NewRecorder()
	CreateIntegration(svc)(rec, requestWithRoles("POST", "/api/integrations", body, []string{"sales_rep"}))
	assert.Equal(t, http.StatusForbidden, rec.Code, "non-managers cannot store provider keys")

	// A manager clears the gate and reaches the service, which reports
	// the missing secrets store rather than a permission failure.
	rec = httptest.NewRecorder()
	CreateIntegration(svc)(rec, requestWithRoles("POST", "/api/integrations", body, []string{"sales_manager"}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeleteIntegrationRequiresManagerRole(t *testing.T) {
	svc := &services.Service{}

	rec := httptest.NewRecorder()
	DeleteIntegration(svc)(rec, requestWithRoles("DELETE", "/api/integrations/hunter", "", []string{"sales_rep"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIntegrationGateRejectsMissingClaims(t *testing.T) {
	svc := &services.Service{}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/integrations", strings.NewReader(`{}`))
	CreateIntegration(svc)(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
