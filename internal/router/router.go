package router

import (
	"github.com/anonto42/blogspace/backend/internal/handlers"
	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Services are the dependencies the HTTP edge is built on
type Services struct {
	Identity   *services.IdentityService
	Content    *services.ContentService
	Engagement *services.EngagementService
	Profile    *services.ProfileService
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, svc Services, log zerolog.Logger) {
	e.GET("/health", handlers.HealthCheck)

	root := e.Group("")
	requireAuth := middleware.JWTAuthMiddleware(svc.Identity)

	// --- Identity, content and profiles ---
	authHandler := handlers.NewAuthHandler(svc.Identity)
	authHandler.RegisterAuthRoutes(root)
	authHandler.RegisterAccountRoutes(root, requireAuth)
	log.Debug().Msg("auth routes configured")

	blogHandler := handlers.NewBlogHandler(svc.Content)
	blogHandler.RegisterPublicBlogRoutes(root)
	blogHandler.RegisterBlogRoutes(root, requireAuth)
	log.Debug().Msg("blog routes configured")

	userHandler := handlers.NewUserHandler(svc.Profile)
	userHandler.RegisterPublicUserRoutes(root)
	userHandler.RegisterProfileRoutes(root, requireAuth)
	log.Debug().Msg("user routes configured")

	// --- Engagement ---
	commentHandler := handlers.NewCommentHandler(svc.Engagement)
	commentHandler.RegisterPublicCommentRoutes(root)
	commentHandler.RegisterCommentRoutes(root, requireAuth)

	likeHandler := handlers.NewLikeHandler(svc.Engagement)
	likeHandler.RegisterLikeRoutes(root, requireAuth)

	notificationHandler := handlers.NewNotificationHandler(svc.Engagement)
	notificationHandler.RegisterNotificationRoutes(root, requireAuth)
	log.Debug().Msg("engagement routes configured")

	log.Info().Int("routes", len(e.Routes())).Msg("all routes configured")
}
