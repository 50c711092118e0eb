package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf := NewConfig()
		assert.Equal(t, "DEV", conf.Env)
		assert.True(t, conf.Debug)
		assert.False(t, conf.TestMode)
		assert.Equal(t, "https://server.globaledutechlearn.com", conf.Backend.BaseURL)
		assert.Equal(t, "/admin/login", conf.Backend.AuthPath)
		assert.Equal(t, 30*time.Second, conf.Backend.Timeout)
		assert.Equal(t, 12*time.Hour, conf.Server.SessionExpirationDelta)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("TEST_BACKEND_BASEURL", "http://localhost:8000/")
		t.Setenv("TEST_DEBUG", "false")
		t.Setenv("TEST_SERVER_SESSIONEXPIRATIONDELTA", "1h")
		conf := NewConfig()
		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.False(t, conf.Debug)
		assert.Equal(t, "http://localhost:8000", conf.Backend.BaseURL, "trailing slash trimmed")
		assert.Equal(t, time.Hour, conf.Server.SessionExpirationDelta)
	})
}
