package handlers

import (
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/middleware"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BlogHandler handles blog publishing and discovery requests
type BlogHandler struct {
	content *services.ContentService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(content *services.ContentService) *BlogHandler {
	return &BlogHandler{content: content}
}

// RegisterPublicBlogRoutes registers the routes readers can use without signing in
func (h *BlogHandler) RegisterPublicBlogRoutes(g *echo.Group) {
	g.POST("/latest-blogs", h.LatestBlogs)
	g.POST("/all-latest-blogs-count", h.CountLatestBlogs)
	g.GET("/trending-blogs", h.TrendingBlogs)
	g.POST("/search-blogs", h.SearchBlogs)
	g.POST("/search-blogs-count", h.CountSearchBlogs)
	g.POST("/get-blog", h.GetBlog)
}

// RegisterBlogRoutes registers the author routes
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/create-blog", h.CreateBlog, m...)
	g.POST("/user-written-blogs", h.UserWrittenBlogs, m...)
	g.POST("/user-written-blogs-count", h.CountUserWrittenBlogs, m...)
	g.POST("/delete-blog", h.DeleteBlog, m...)
}

// CreateBlog publishes a new blog, saves a draft, or updates an existing blog when id is set
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.CreateBlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slug, err := h.content.SaveBlog(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": slug})
}

func (h *BlogHandler) LatestBlogs(c echo.Context) error {
	var req models.PageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blogs, err := h.content.LatestBlogs(c.Request().Context(), req.Page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

func (h *BlogHandler) CountLatestBlogs(c echo.Context) error {
	total, err := h.content.CountLatestBlogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"totalDocs": total})
}

func (h *BlogHandler) TrendingBlogs(c echo.Context) error {
	blogs, err := h.content.TrendingBlogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

// SearchBlogs filters by tag, title query or author, in that order of precedence
func (h *BlogHandler) SearchBlogs(c echo.Context) error {
	var req models.SearchBlogsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blogs, err := h.content.SearchBlogs(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

func (h *BlogHandler) CountSearchBlogs(c echo.Context) error {
	var req models.SearchBlogsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	total, err := h.content.CountSearchBlogs(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"totalDocs": total})
}

// GetBlog returns a single blog by its slug
func (h *BlogHandler) GetBlog(c echo.Context) error {
	var req models.GetBlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blog, err := h.content.GetBlog(c.Request().Context(), req.BlogID, req.Draft, req.Mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": blog})
}

// UserWrittenBlogs lists the caller's published blogs or drafts
func (h *BlogHandler) UserWrittenBlogs(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.UserBlogsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	blogs, err := h.content.UserBlogs(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

func (h *BlogHandler) CountUserWrittenBlogs(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.UserBlogsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	total, err := h.content.CountUserBlogs(c.Request().Context(), userID, req.Draft, req.Query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"totalDocs": total})
}

// DeleteBlog removes one of the caller's blogs
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req models.DeleteBlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.content.DeleteBlog(c.Request().Context(), userID, req.BlogID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "done"})
}
