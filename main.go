package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/acme/autocert"

	"postapi/auth"
	"postapi/config"
	"postapi/db"
	"postapi/handler"
	"postapi/store"
)

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
}

func main() {
	issueFor := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if *issueFor != "" {
		token, _, err := auth.IssueToken(cfg.JWTSecret, *issueFor, cfg.TokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error issuing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Running database schema migrations...")
	sqlDB, err := setupDB(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	e := newServer(cfg, sqlDB)

	go func() {
		if err := start(e, cfg); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}

func setupDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	sqlDB, err := db.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	err = db.Migrate(sqlDB, cfg.DBDriver)
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No database schema migration ran. Database schema already in latest version")
		return sqlDB, nil
	}
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error during database schema migration: %w", err)
	}
	return sqlDB, nil
}

func newServer(cfg config.Config, sqlDB *sql.DB) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevels[cfg.LogLevel])
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	h := handler.Handler{
		Posts:        store.NewPostStore(sqlDB),
		Users:        store.NewUserStore(sqlDB),
		DB:           sqlDB,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		EnableSignup: cfg.EnableSignup,
		Environment:  cfg.Environment,
		TrimTitle:    cfg.TrimTitle,
		StripHTML:    cfg.StripHTML,
		PerPage:      cfg.PerPage,
	}
	h.Register(e)
	return e
}

func start(e *echo.Echo, cfg config.Config) error {
	if cfg.Address != "" {
		return e.Start(cfg.Address)
	}
	// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
	e.AutoTLSManager.Cache = autocert.DirCache(cfg.CertCacheDir)
	if cfg.WhitelistHost != "" {
		e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
	}
	e.Pre(middleware.HTTPSRedirect())
	return e.StartAutoTLS(":443")
}
