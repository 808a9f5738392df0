// Package config reads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"postapi/db"
	"postapi/store"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

// EnvFiles are loaded in order before reading the environment. Variables
// already set are never overridden.
var EnvFiles = []string{".env.local", ".env"}

type Config struct {
	Environment     string
	Address         string
	WhitelistHost   string
	CertCacheDir    string
	JWTSecret       string
	TokenTTL        time.Duration
	DBDriver        string
	DBURL           string
	EnableSignup    bool
	TrimTitle       bool
	StripHTML       bool
	PerPage         int
	LogLevel        string
	ShutdownTimeout time.Duration
}

func (c Config) IsDev() bool {
	return c.Environment == DevEnv
}

// Load populates the environment from EnvFiles and builds a Config.
func Load() (Config, error) {
	for _, name := range EnvFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return Config{}, fmt.Errorf("error loading %s: %w", name, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Config{
		Environment:   getenv("ENV"),
		Address:       getenv("ADDRESS_LISTEN"),
		WhitelistHost: getenv("WHITELIST_HOST"),
		CertCacheDir:  getenv("CERT_CACHE_DIR"),
		JWTSecret:     getenv("JWT_SECRET"),
		DBDriver:      getenv("DB_DRIVER"),
		DBURL:         getenv("DB_URL"),
		EnableSignup:  getenv("ENABLE_SIGNUP") == "true",
		LogLevel:      getenv("LOG_LEVEL"),
	}
	if c.Environment == "" {
		c.Environment = ProEnv
	}
	if c.Environment != DevEnv && c.Environment != ProEnv {
		return c, fmt.Errorf("ENV must be %q or %q, got %q", DevEnv, ProEnv, c.Environment)
	}
	if c.IsDev() && c.Address == "" {
		c.Address = ":8080"
	}
	if c.CertCacheDir == "" {
		c.CertCacheDir = "/var/www/.cache"
	}
	if c.JWTSecret == "" && c.IsDev() {
		c.JWTSecret = "unsecure"
	}
	if c.JWTSecret == "" {
		return c, errors.New("no secret defined")
	}
	if c.DBDriver == "" {
		c.DBDriver = db.DriverSQLite
	}
	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return c, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}

	var err error
	if c.TokenTTL, err = duration(getenv, "TOKEN_TTL", 7*24*time.Hour); err != nil {
		return c, err
	}
	if c.ShutdownTimeout, err = duration(getenv, "SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return c, err
	}
	if c.TrimTitle, err = boolean(getenv, "TITLE_TRIM", true); err != nil {
		return c, err
	}
	if c.StripHTML, err = boolean(getenv, "TITLE_STRIP_HTML", false); err != nil {
		return c, err
	}

	c.PerPage = store.DefaultPerPage
	if v := getenv("PER_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > store.MaxPerPage {
			return c, fmt.Errorf("PER_PAGE must be between 1 and %d, got %q", store.MaxPerPage, v)
		}
		c.PerPage = n
	}
	return c, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolean(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
