package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", c.HTTPAddr)
	assert.Equal(t, BackendLocal, c.Backend)
	assert.Equal(t, []string{"kafka:9092"}, c.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 30*time.Minute, c.SessionIdle)
	assert.Equal(t, "10-M", c.AuthRateLimit)
	assert.Nil(t, c.LogoutClearsCart)
	assert.False(t, c.ClearCartOnLogout())
}

func TestLoadRemote(t *testing.T) {
	t.Setenv("BACKEND", " Remote ")
	t.Setenv("POSTGRES_DSN", "postgres://x")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("KAFKA_BROKERS", "a:9092, ,b:9092")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRemote, c.Backend)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.KafkaBrokers)
	assert.True(t, c.ClearCartOnLogout())

	t.Setenv("LOGOUT_CLEARS_CART", "false")
	c, err = Load()
	require.NoError(t, err)
	assert.False(t, c.ClearCartOnLogout())
}

func TestValidate(t *testing.T) {
	base := Config{Backend: BackendLocal, LogLevel: "info"}
	assert.NoError(t, base.Validate())

	bad := base
	bad.Backend = "firebase"
	assert.Error(t, bad.Validate())

	remote := base
	remote.Backend = BackendRemote
	assert.ErrorContains(t, remote.Validate(), "POSTGRES_DSN")
	remote.PostgresDSN = "postgres://x"
	assert.ErrorContains(t, remote.Validate(), "JWT_SECRET")
	remote.JWTSecret = "s"
	remote.KafkaBrokers = []string{"k:9092"}
	assert.NoError(t, remote.Validate())

	lvl := base
	lvl.LogLevel = "loud"
	assert.Error(t, lvl.Validate())
}
