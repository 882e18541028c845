package handlers

import (
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterPublicUserRoutes registers profile lookups and image upload
func (h *UserHandler) RegisterPublicUserRoutes(g *echo.Group) {
	g.POST("/search-users", h.SearchUsers)
	g.POST("/get-profile", h.GetProfile)
	g.POST("/uploadImage", h.UploadImage)
}

// RegisterProfileRoutes registers routes that edit the caller's own profile
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/update-profile-image", h.UpdateProfileImage, m...)
	g.POST("/update-profile", h.UpdateProfile, m...)
}

// SearchUsers finds users whose username contains the query
func (h *UserHandler) SearchUsers(c echo.Context) error {
	var req models.SearchUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	users, err := h.profiles.SearchUsers(c.Request().Context(), req.Query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GetProfile returns a public profile by username
func (h *UserHandler) GetProfile(c echo.Context) error {
	var req models.GetProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.profiles.GetProfile(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfileImage(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	img, err := h.profiles.UpdateProfileImage(c.Request().Context(), userID, req.URL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"profile_img": img})
}

// UpdateProfile changes username, bio and social links
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	username, err := h.profiles.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"username": username})
}

// UploadImage stores the multipart "image" file and returns its public URL
func (h *UserHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.BadRequest("Image file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return apperr.BadRequest("Image file is unreadable")
	}
	defer file.Close()

	url, err := h.profiles.UploadImage(c.Request().Context(), file, fh.Filename)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"imageURL": url})
}
