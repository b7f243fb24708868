package services

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/lead-services/models"
)

func TestWriteResponseSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteResponse(rec, 201, models.StatusResponse{Status: "ok"}, "/api/leads/abc")

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "/api/leads/abc", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWriteResponseNilBody(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteResponse(rec, 204, nil)

	assert.Equal(t, 204, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("dana@example.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.co.uk"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail(""))
}

func TestMergeLeadFields(t *testing.T) {
	dst := &models.Lead{FirstName: "Dana", CompanyName: "Acme"}
	src := &models.Lead{FirstName: "Dee", PhoneNumber: "+15550001111"}

	mergeLeadFields(dst, src, false)
	assert.Equal(t, "Dana", dst.FirstName, "existing fields survive a gap-fill merge")
	assert.Equal(t, "+15550001111", dst.PhoneNumber, "gaps are filled")

	mergeLeadFields(dst, src, true)
	assert.Equal(t, "Dee", dst.FirstName, "overwrite merge replaces fields")
	assert.Equal(t, "Acme", dst.CompanyName, "empty incoming values never clobber")
}
