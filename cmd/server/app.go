package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/email"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/generation"
	"github.com/phrazzld/taskboard/internal/jobs"
	"github.com/phrazzld/taskboard/internal/platform/gemini"
	"github.com/phrazzld/taskboard/internal/platform/postgres"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore   store.UserStore
	taskStore   store.TaskStore
	apiKeyStore store.APIKeyStore

	// Services
	jwtService     auth.JWTService
	passwordHasher *auth.BcryptHasher
	generator      generation.SuggestionGenerator
	fallback       generation.SuggestionGenerator

	// Event system and background delivery
	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established
// before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.apiKeyStore = postgres.NewPostgresAPIKeyStore(db, logger)

	app.fallback = generation.NewFallbackGenerator(logger)
	app.generator, err = setupGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app.jobRunner = jobs.NewRunner(jobs.DefaultRunnerConfig(), logger)
	app.jobRunner.Start()

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	setupNotifications(app)

	logger.Info("application initialized successfully")
	return app, nil
}

// setupGenerator builds the Gemini suggestion generator. A missing API
// key is not an error: the suggestions endpoint then serves the static
// fallback only.
func setupGenerator(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (generation.SuggestionGenerator, error) {
	if cfg.LLM.GeminiAPIKey == "" {
		logger.Info("no Gemini API key configured, suggestions use the static fallback")
		return nil, nil
	}

	generator, err := gemini.NewSuggestionGenerator(
		ctx,
		logger.With("component", "llm_generator"),
		cfg.LLM,
	)
	if err != nil {
		if errors.Is(err, generation.ErrInvalidConfig) {
			return nil, fmt.Errorf("invalid LLM configuration: %w", err)
		}
		return nil, fmt.Errorf("failed to initialize suggestion generator: %w", err)
	}

	logger.Info("Gemini suggestion generator initialized", "model", cfg.LLM.ModelName)
	return generator, nil
}

// setupNotifications wires the email notification handler into the event
// emitter. Without SMTP configuration messages are logged and dropped.
func setupNotifications(app *application) {
	var mailer email.Mailer
	if app.config.Email.Enabled() {
		mailer = email.NewSMTPMailer(app.config.Email, app.logger)
		app.logger.Info("SMTP mailer initialized", "host", app.config.Email.SMTPHost)
	} else {
		mailer = email.NewNoopMailer(app.logger)
		app.logger.Info("email delivery disabled, notifications will be logged only")
	}

	handler := email.NewNotificationHandler(mailer, app.jobRunner, app.logger)
	app.eventEmitter.RegisterHandler(handler)
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
