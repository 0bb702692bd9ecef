package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/state.json", cfg.DataFile)
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "admin@123", cfg.AdminPassword)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 30*time.Second, cfg.AssignTimeout)
	assert.Equal(t, "fleet/stats", cfg.MQTTTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("ADMIN_USERNAME", "ops")
	t.Setenv("ASSIGN_TIMEOUT", "5s")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "ops", cfg.AdminUsername)
	assert.Equal(t, 5*time.Second, cfg.AssignTimeout)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "tomorrow")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
}
