package handlers

import (
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	identity *services.IdentityService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(identity *services.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// RegisterAuthRoutes registers the unauthenticated routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/google-auth", h.GoogleAuth)
}

// RegisterAccountRoutes registers routes for signed-in users
func (h *AuthHandler) RegisterAccountRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/change-password", h.ChangePassword, m...)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.identity.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// SignIn handles email and password login
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.identity.Signin(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// GoogleAuth exchanges a Firebase ID token for an access token
func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	var req models.GoogleAuthRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.identity.GoogleAuth(c.Request().Context(), req.AccessToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.identity.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"Status": "Password change successfully"})
}
