package app

import (
	"testing"
	"time"

	"office_equipment_borrowing/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
}

func TestSignAndParseToken(t *testing.T) {
	cfg := testConfig()
	u := &models.User{ID: "11111111-2222-3333-4444-555555555555", Role: models.RoleOfficer}

	raw, err := SignToken(cfg, u, time.Now())
	require.NoError(t, err)

	claims, err := ParseToken(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleOfficer, claims.Role)
	assert.NotEmpty(t, claims.ID, "jti is required for revocation")
}

func TestParseTokenWrongSecret(t *testing.T) {
	cfg := testConfig()
	raw, err := SignToken(cfg, &models.User{ID: "u1", Role: models.RoleUser}, time.Now())
	require.NoError(t, err)

	other := Config{JWTSecret: "different", TokenTTL: time.Hour}
	_, err = ParseToken(other, raw)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	cfg := testConfig()
	raw, err := SignToken(cfg, &models.User{ID: "u1", Role: models.RoleUser}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(cfg, raw)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testConfig(), "not.a.token")
	assert.Error(t, err)
}
