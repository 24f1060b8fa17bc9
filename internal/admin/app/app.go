package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/wardenhq/warden/internal/admin/http"
	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/internal/admin/identity/dev"
	"github.com/wardenhq/warden/internal/admin/identity/gip"
	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/internal/admin/store/drivers/sqlite"
	"github.com/wardenhq/warden/pkg/cryptox"
	"github.com/wardenhq/warden/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the admin service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	provider identity.Provider

	sessionService      *service.SessionService
	userService         *service.UserService
	rolesService        *service.RolesService
	lockoutService      *service.LockoutService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "warden-admin",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initIdentityProvider(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("admin service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down admin service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admin service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initIdentityProvider selects the configured identity backend.
func (app *Application) initIdentityProvider() error {
	switch app.cfg.IdentityProvider {
	case "dev":
		app.logger.Warn("using in-memory dev identity provider; tokens are not production grade")
		secret, err := cryptox.GenerateToken(32)
		if err != nil {
			return fmt.Errorf("failed to generate dev provider secret: %w", err)
		}
		app.provider = dev.New(secret)
		return nil
	case "gip":
		if app.cfg.GIPProjectID == "" || app.cfg.GIPAPIKey == "" {
			return fmt.Errorf("gip identity provider requires WARDEN_GIP_PROJECT_ID and WARDEN_GIP_API_KEY")
		}
		p, err := gip.New(context.Background(), gip.Config{
			ProjectID: app.cfg.GIPProjectID,
			APIKey:    app.cfg.GIPAPIKey,
		}, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize identity provider: %w", err)
		}
		app.provider = p
		return nil
	default:
		return fmt.Errorf("unknown identity provider %q", app.cfg.IdentityProvider)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:    app.db,
		Provider: app.provider,
	}
	app.rolesService = &service.RolesService{
		Store:                     app.db,
		AllowImplicitRoleCreation: app.cfg.AllowImplicitRoleCreation,
	}
	app.userService = &service.UserService{
		Store:           app.db,
		Sessions:        app.sessionService,
		Roles:           app.rolesService,
		DefaultRoleName: app.cfg.DefaultRoleName,
	}
	app.lockoutService = &service.LockoutService{
		Store: app.db,
		Policy: service.LockoutPolicy{
			MaxFailedAttempts: app.cfg.MaxFailedAttempts,
			LockDuration:      app.cfg.LockDuration,
			MaxLockoutsPerDay: app.cfg.MaxLockoutsPerDay,
		},
	}
	app.bootstrapService = &service.BootstrapService{
		Store:           app.db,
		Provider:        app.provider,
		Token:           app.cfg.BootstrapToken,
		DefaultRoleName: app.cfg.DefaultRoleName,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.DeletedUserRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.LockoutService = app.lockoutService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
