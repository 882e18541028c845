package handlers

import (
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/like-blog", h.LikeBlog, m...)
	g.POST("/isLiked-by-user", h.IsLikedByUser, m...)
}

// LikeBlog toggles the caller's like. The client sends the state it currently
// shows; the response carries the state the server settled on.
func (h *LikeHandler) LikeBlog(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.LikeBlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blogID, err := parseID(req.ID)
	if err != nil {
		return err
	}

	liked, err := h.engagement.SetLike(c.Request().Context(), userID, blogID, !req.IsLikedByUser)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"liked_by_user": liked})
}

// IsLikedByUser reports whether the caller likes the blog
func (h *LikeHandler) IsLikedByUser(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.IsLikedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blogID, err := parseID(req.ID)
	if err != nil {
		return err
	}

	liked, err := h.engagement.IsLiked(c.Request().Context(), userID, blogID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"result": liked})
}
