package handlers

import (
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	engagement *services.EngagementService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(engagement *services.EngagementService) *NotificationHandler {
	return &NotificationHandler{engagement: engagement}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.GET("/new-notification", h.NewNotification, m...)
	g.POST("/notifications", h.GetNotifications, m...)
	g.POST("/all-notification-count", h.CountNotifications, m...)
}

// NewNotification reports whether unseen notifications are waiting
func (h *NotificationHandler) NewNotification(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	available, err := h.engagement.HasUnseenNotifications(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"new_notification_available": available})
}

// GetNotifications returns a page of the caller's notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.NotificationsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	notifications, err := h.engagement.ListNotifications(c.Request().Context(), userID, req.Page, req.Filter, req.DeletedDocCount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": notifications})
}

// CountNotifications counts the caller's notifications for a filter
func (h *NotificationHandler) CountNotifications(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.NotificationCountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	total, err := h.engagement.CountNotifications(c.Request().Context(), userID, req.Filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"totalDocs": total})
}
