package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postapi/config"
	"postapi/db"
	"postapi/store"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func TestDevDefaults(t *testing.T) {
	c, err := config.FromEnv(env(map[string]string{"ENV": "dev"}))
	require.NoError(t, err)

	assert.True(t, c.IsDev())
	assert.Equal(t, ":8080", c.Address)
	assert.Equal(t, "unsecure", c.JWTSecret)
	assert.Equal(t, db.DriverSQLite, c.DBDriver)
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.True(t, c.TrimTitle)
	assert.False(t, c.StripHTML)
	assert.False(t, c.EnableSignup)
	assert.Equal(t, store.DefaultPerPage, c.PerPage)
	assert.Equal(t, "info", c.LogLevel)
}

func TestProRequiresSecret(t *testing.T) {
	_, err := config.FromEnv(env(nil))
	require.EqualError(t, err, "no secret defined")

	c, err := config.FromEnv(env(map[string]string{"JWT_SECRET": "s3cr3t"}))
	require.NoError(t, err)
	assert.Equal(t, config.ProEnv, c.Environment)
	assert.Empty(t, c.Address, "production serves TLS unless an address is set")
	assert.Equal(t, "/var/www/.cache", c.CertCacheDir)
}

func TestOverrides(t *testing.T) {
	c, err := config.FromEnv(env(map[string]string{
		"ENV":              "dev",
		"ADDRESS_LISTEN":   ":9000",
		"DB_DRIVER":        "pgx",
		"DB_URL":           "postgres://localhost/posts",
		"ENABLE_SIGNUP":    "true",
		"TITLE_TRIM":       "false",
		"TITLE_STRIP_HTML": "true",
		"PER_PAGE":         "50",
		"TOKEN_TTL":        "1h",
		"LOG_LEVEL":        "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Address)
	assert.Equal(t, db.DriverPostgres, c.DBDriver)
	assert.Equal(t, "postgres://localhost/posts", c.DBURL)
	assert.True(t, c.EnableSignup)
	assert.False(t, c.TrimTitle)
	assert.True(t, c.StripHTML)
	assert.Equal(t, 50, c.PerPage)
	assert.Equal(t, time.Hour, c.TokenTTL)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestInvalidValues(t *testing.T) {
	for key, value := range map[string]string{
		"ENV":        "staging",
		"PER_PAGE":   "1000",
		"TOKEN_TTL":  "forever",
		"TITLE_TRIM": "maybe",
		"LOG_LEVEL":  "loud",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := config.FromEnv(env(map[string]string{"ENV": "dev", key: value}))
			assert.Error(t, err)
		})
	}
}
