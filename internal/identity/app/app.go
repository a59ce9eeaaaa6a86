package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/foodcar/internal/identity/http"
	"github.com/aussiebroadwan/foodcar/internal/identity/metrics"
	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/foodcar/pkg/cryptox"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      *sqlite.Store
	keys    *SigningKeys
	metrics *metrics.Metrics
	sender  sms.Sender
	codes   *sms.DevCodes

	challengeService    *service.ChallengeService
	otpService          *service.OTPService
	recordService       *service.RecordService
	identityService     *service.IdentityService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router

	running bool
}

// New builds the application. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitSigningKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keys = keys

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.running = true

	app.logger.Info("identity service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"sms_provider", app.cfg.SMSProvider,
		"dev_otp", app.cfg.DevOTPEnabled,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.running = false
			_ = app.db.Close()
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

// Shutdown drains requests, stops housekeeping and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.running {
		app.housekeepingService.Stop()
		app.running = false
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// DSN builds the modernc sqlite DSN for a database file. Pragmas are set
// per connection so every pooled connection enforces foreign keys.
func DSN(file string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + file + "?" + q.Encode()
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initSender() {
	switch app.cfg.SMSProvider {
	case SMSProviderSMSLocal:
		app.sender = sms.NewSMSLocal(app.cfg.SMSAPIKey, app.cfg.SMSBaseURL, app.cfg.SMSSender, app.logger, app.metrics)
	default:
		app.codes = sms.NewDevCodes()
		app.sender = sms.NewLogSender(app.logger, app.codes)
		app.logger.Warn("codes are logged instead of sent; do not use the log provider in production")
	}
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	app.initSender()

	app.challengeService = &service.ChallengeService{
		Store:   app.db,
		TTL:     app.cfg.ChallengeTTL,
		MaxUses: app.cfg.ChallengeMaxUses,
		Metrics: app.metrics,
	}
	app.otpService = &service.OTPService{
		Store:        app.db,
		Challenges:   app.challengeService,
		Sender:       app.sender,
		Hasher:       cryptox.NewCodeHasher(pepper),
		Signer:       app.keys.Signer,
		Issuer:       app.cfg.Issuer,
		TokenTTL:     app.cfg.TokenTTL,
		CodeTTL:      app.cfg.OTPTTL,
		MaxAttempts:  app.cfg.OTPMaxAttempts,
		PhoneLimiter: service.NewPhoneLimiter(app.cfg.OTPSendInterval),
		Metrics:      app.metrics,
		Logger:       app.logger,
	}
	app.recordService = &service.RecordService{Store: app.db}
	app.identityService = &service.IdentityService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(app.db, app.logger, app.cfg.HousekeepingInterval)
	app.housekeepingService.Metrics = app.metrics
	app.housekeepingService.DevCodes = app.codes
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.KeySet,
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	router.ChallengeService = app.challengeService
	router.OTPService = app.otpService
	router.RecordService = app.recordService
	router.IdentityService = app.identityService
	if app.cfg.DevOTPEnabled {
		router.DevCodes = app.codes
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
