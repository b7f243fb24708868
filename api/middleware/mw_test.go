package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leadflowhq/lead-services/internal/authn"
	"github.com/stretchr/testify/assert"
)

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request without Authorization header must not reach the handler")
	})

	req, err := http.NewRequest("GET", "/leads", nil)
	if err != nil {
		t.Fatal(err)
	}

	mw := JWTMiddleware(next)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_BadTokenFormat(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request with a non-bearer header must not reach the handler")
	})

	req, err := http.NewRequest("GET", "/leads", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Add("Authorization", "Basic dXNlcjpwYXNz")

	mw := JWTMiddleware(next)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_ClaimsInContext(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"preferred_username":"rep-amira","roles":["manager"]}`))
	token := header + "." + payload + ".sig"

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
		assert.True(t, ok, "claims should be in the request context")
		assert.Equal(t, "rep-amira", claims.Username)
		w.WriteHeader(http.StatusOK)
	})

	req, err := http.NewRequest("GET", "/leads", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Add("Authorization", "Bearer "+token)

	mw := JWTMiddleware(next)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	assert.True(t, reached, "valid token should reach the handler")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithLogger_AssignsRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req, err := http.NewRequest("GET", "/leads", nil)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "requests without an ID get one assigned")
}

func TestWithLogger_KeepsCallerRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req, err := http.NewRequest("GET", "/leads", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "req-42")

	w := httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
