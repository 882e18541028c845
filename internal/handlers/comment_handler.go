package handlers

import (
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	engagement *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{engagement: engagement}
}

// RegisterCommentRoutes registers the routes that need an authenticated caller
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/add-comment", h.AddComment, m...)
	g.POST("/delete-comment", h.DeleteComment, m...)
}

// RegisterPublicCommentRoutes registers the read-only comment routes
func (h *CommentHandler) RegisterPublicCommentRoutes(g *echo.Group) {
	g.POST("/get-blog-comments", h.GetBlogComments)
	g.POST("/get-replies", h.GetReplies)
}

// AddComment adds a comment to a blog, or a reply when replying_to is set
func (h *CommentHandler) AddComment(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.AddCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	blogID, err := parseID(req.ID)
	if err != nil {
		return err
	}
	blogAuthor, err := optionalID(req.BlogAuthor)
	if err != nil {
		return err
	}
	replyingTo, err := optionalID(req.ReplyingTo)
	if err != nil {
		return err
	}

	comment, err := h.engagement.AddComment(c.Request().Context(), services.AddCommentInput{
		Actor:      userID,
		Blog:       blogID,
		BlogAuthor: blogAuthor,
		Text:       req.Comment,
		ReplyingTo: replyingTo,
	})
	if err != nil {
		return err
	}

	children := comment.Children
	if children == nil {
		children = []primitive.ObjectID{}
	}
	return c.JSON(http.StatusOK, models.AddCommentResponse{
		Comment:     comment.Comment,
		CommentedAt: comment.CommentedAt,
		ID:          comment.ID,
		UserID:      comment.CommentedBy,
		Children:    children,
	})
}

// GetBlogComments returns a page of top-level comments
func (h *CommentHandler) GetBlogComments(c echo.Context) error {
	var req models.GetBlogCommentsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blogID, err := parseID(req.BlogID)
	if err != nil {
		return err
	}

	comments, err := h.engagement.ListBlogComments(c.Request().Context(), blogID, req.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// GetReplies returns a page of replies to a comment
func (h *CommentHandler) GetReplies(c echo.Context) error {
	var req models.GetRepliesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	commentID, err := parseID(req.ID)
	if err != nil {
		return err
	}

	replies, err := h.engagement.ListReplies(c.Request().Context(), commentID, req.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"replies": replies})
}

// DeleteComment removes a comment and its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.DeleteCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	commentID, err := parseID(req.ID)
	if err != nil {
		return err
	}

	if err := h.engagement.DeleteComment(c.Request().Context(), userID, commentID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"Status": "done"})
}
