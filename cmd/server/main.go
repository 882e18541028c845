package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/blogspace/backend/internal/handlers"
	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/anonto42/blogspace/backend/internal/router"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/anonto42/blogspace/backend/internal/validators"
	"github.com/anonto42/blogspace/backend/pkg/config"
	"github.com/anonto42/blogspace/backend/pkg/firebase"
	"github.com/anonto42/blogspace/backend/pkg/logger"
	"github.com/anonto42/blogspace/backend/pkg/media"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "production")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("Starting blogspace server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

// run connects the stores, serves HTTP and blocks until ctx is cancelled
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing databases: %w", err)
	}
	defer db.CloseDB()

	repos := repositories.New(db.Database, db.Postgres, cfg.Mongo.Timeout)
	if err := repos.Prepare(ctx); err != nil {
		return fmt.Errorf("preparing storage: %w", err)
	}
	tx := repositories.NewMongoTransactor(db.Mongo, cfg.Mongo.Transactions)

	// Google sign-in is optional
	var verifier services.TokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
	if err != nil {
		log.Warn().Err(err).Msg("Firebase disabled, google-auth will be rejected")
	} else {
		verifier = firebaseApp.AuthClient
	}

	var uploader media.Uploader
	cld, err := media.NewCloudinaryUploader(cfg.Media.CloudinaryURL, cfg.Media.UploadFolder)
	if err != nil {
		log.Warn().Err(err).Msg("Cloudinary disabled, image upload will be rejected")
	} else {
		uploader = cld
	}

	svc := newServices(cfg, repos, tx, verifier, uploader, log)

	// Counter reconciliation
	reconcileCtx, cancelReconcile := context.WithCancel(ctx)
	defer cancelReconcile()
	var reconcileDone <-chan struct{}
	if cfg.ReconcileInterval > 0 {
		reconciler := services.NewReconciler(repos.Blog, repos.Comment, repos.Notification, repos.User, repos.ReconcileRun, tx, log)
		reconcileDone = reconciler.Start(reconcileCtx, cfg.ReconcileInterval)
		log.Info().Dur("interval", cfg.ReconcileInterval).Msg("Scheduled reconciliation started")
	}

	e := newServer(cfg, svc, log)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("serving http: %w", err)
		}
	}

	cancelReconcile()
	if reconcileDone != nil {
		<-reconcileDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	return runErr
}

// newServices builds the services the HTTP edge depends on. verifier and
// uploader may be nil when their integration is not configured.
func newServices(
	cfg *config.Config,
	repos *repositories.Repositories,
	tx repositories.Transactor,
	verifier services.TokenVerifier,
	uploader media.Uploader,
	log zerolog.Logger,
) router.Services {
	return router.Services{
		Identity:   services.NewIdentityService(repos.User, verifier, cfg.Auth.SecretAccessKey, cfg.Auth.AccessTokenTTL, log),
		Content:    services.NewContentService(repos.Blog, repos.Comment, repos.Notification, repos.User, tx, log),
		Engagement: services.NewEngagementService(repos.Blog, repos.Comment, repos.Notification, repos.User, tx, log),
		Profile:    services.NewProfileService(repos.User, uploader, log),
	}
}

// newServer creates the Echo instance with validation, error rendering,
// middleware and routes
func newServer(cfg *config.Config, svc router.Services, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log)

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, svc, log)
	return e
}
