package authn

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeToken(t *testing.T, payload map[string]interface{}) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".sig"
}

func TestParseClaims(t *testing.T) {
	token := encodeToken(t, map[string]interface{}{
		"preferred_username": "rep-amira",
		"email":              "amira@example.com",
		"roles":              []string{"manager"},
	})

	claims, err := ParseClaims(token)
	assert.NoError(t, err, "should parse claims without error")
	assert.Equal(t, "rep-amira", claims.Username, "username should be decoded")
	assert.True(t, claims.HasRole("manager"), "role should be present")
	assert.False(t, claims.HasRole("admin"), "missing role should be absent")
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	assert.Error(t, err, "non-JWT input should be rejected")
}
