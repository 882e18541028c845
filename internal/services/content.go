package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// BlogPageSize is the page size of blog listings
	BlogPageSize = 5
	// SearchDefaultLimit applies when a search request carries no limit
	SearchDefaultLimit = 2
	// TrendingLimit is the number of trending blogs returned
	TrendingLimit = 5

	maxDescriptionLength = 200
	maxTags              = 10
)

var nonSlugChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// ContentService manages blogs and their lifecycle cascades
type ContentService struct {
	blogs         repositories.BlogRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	tx            repositories.Transactor
	log           zerolog.Logger
}

// NewContentService creates a new ContentService
func NewContentService(
	blogs repositories.BlogRepository,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	tx repositories.Transactor,
	log zerolog.Logger,
) *ContentService {
	return &ContentService{
		blogs:         blogs,
		comments:      comments,
		notifications: notifications,
		users:         users,
		tx:            tx,
		log:           log.With().Str("component", "content").Logger(),
	}
}

func validateBlog(req *models.CreateBlogRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return apperr.Validation("You must provide a title to publish the blog")
	}
	if req.Draft {
		return nil
	}
	if strings.TrimSpace(req.Banner) == "" {
		return apperr.Validation("You must provide a blog banner to publish the blog")
	}
	if len(req.Content.Blocks) == 0 {
		return apperr.Validation("You must provide a blog content to publish the blog")
	}
	if n := len([]rune(req.Description)); n == 0 || n > maxDescriptionLength {
		return apperr.Validation("You must provide a description under 200 characters to publish the blog")
	}
	if len(req.Tags) == 0 || len(req.Tags) > maxTags {
		return apperr.Validation("You must provide tags to publish the blog, maximum 10")
	}
	return nil
}

// Slugify turns a title into a unique blog_id
func Slugify(title string) string {
	base := strings.Trim(nonSlugChars.ReplaceAllString(title, "-"), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SaveBlog creates a blog, or updates the author's blog when req.ID is set,
// and returns its blog_id. Only published blogs count towards total_posts.
func (s *ContentService) SaveBlog(ctx context.Context, author primitive.ObjectID, req models.CreateBlogRequest) (string, error) {
	if err := validateBlog(&req); err != nil {
		return "", err
	}
	tags := normalizeTags(req.Tags)

	if req.ID != "" {
		return req.ID, s.updateBlog(ctx, author, req, tags)
	}

	blog := &models.Blog{
		BlogID:  Slugify(req.Title),
		Title:   req.Title,
		Banner:  req.Banner,
		Des:     req.Description,
		Content: req.Content,
		Tags:    tags,
		Author:  author,
		Draft:   req.Draft,
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.blogs.CreateBlog(ctx, blog); err != nil {
			return err
		}
		return s.users.AddBlog(ctx, author, blog.ID, publishedDelta(blog.Draft))
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("blog", blog.BlogID).Bool("draft", blog.Draft).Msg("blog created")
	return blog.BlogID, nil
}

func (s *ContentService) updateBlog(ctx context.Context, author primitive.ObjectID, req models.CreateBlogRequest, tags []string) error {
	existing, err := s.blogs.GetBlogBySlug(ctx, req.ID)
	if err != nil {
		return err
	}
	if existing.Author != author {
		return apperr.NotFound("Blog not found")
	}

	update := models.BlogUpdate{
		Title:   req.Title,
		Banner:  req.Banner,
		Des:     req.Description,
		Content: req.Content,
		Tags:    tags,
		Draft:   req.Draft,
	}
	postDelta := publishedDelta(req.Draft) - publishedDelta(existing.Draft)

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.blogs.UpdateBlog(ctx, req.ID, author, update); err != nil {
			return err
		}
		if postDelta == 0 {
			return nil
		}
		return s.users.IncrementTotalPosts(ctx, author, postDelta)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("blog", req.ID).Bool("draft", req.Draft).Msg("blog updated")
	return nil
}

func publishedDelta(draft bool) int {
	if draft {
		return 0
	}
	return 1
}

func pageSkip(page, deleted int, size int64) int64 {
	if page < 1 {
		page = 1
	}
	skip := int64(page-1)*size - int64(deleted)
	if skip < 0 {
		return 0
	}
	return skip
}

func published() *bool {
	draft := false
	return &draft
}

// LatestBlogs returns a page of published blogs, newest first
func (s *ContentService) LatestBlogs(ctx context.Context, page int) ([]models.BlogView, error) {
	blogs, err := s.blogs.ListBlogs(ctx, models.BlogQuery{
		Draft: published(),
		Skip:  pageSkip(page, 0, BlogPageSize),
		Limit: BlogPageSize,
	})
	if err != nil {
		return nil, err
	}
	return s.blogViews(ctx, blogs)
}

// CountLatestBlogs counts published blogs
func (s *ContentService) CountLatestBlogs(ctx context.Context) (int64, error) {
	return s.blogs.CountBlogs(ctx, models.BlogQuery{Draft: published()})
}

// TrendingBlogs returns the most read, then most liked, published blogs
func (s *ContentService) TrendingBlogs(ctx context.Context) ([]models.BlogView, error) {
	blogs, err := s.blogs.ListBlogs(ctx, models.BlogQuery{Draft: published(), Limit: TrendingLimit, SortTrending: true})
	if err != nil {
		return nil, err
	}
	return s.blogViews(ctx, blogs)
}

// searchQuery picks one criterion in priority order: tag, title, author
func searchQuery(req models.SearchBlogsRequest) (models.BlogQuery, error) {
	q := models.BlogQuery{Draft: published()}
	switch {
	case req.Tag != "":
		q.Tag = strings.ToLower(req.Tag)
		q.ExcludeSlug = req.EliminateBlog
	case req.Query != "":
		q.Title = req.Query
	case req.Author != "":
		id, err := primitive.ObjectIDFromHex(req.Author)
		if err != nil {
			return q, apperr.Validation("Invalid author id")
		}
		q.Author = &id
	}
	return q, nil
}

// SearchBlogs returns a page of published blogs matching a tag, title or author
func (s *ContentService) SearchBlogs(ctx context.Context, req models.SearchBlogsRequest) ([]models.BlogView, error) {
	q, err := searchQuery(req)
	if err != nil {
		return nil, err
	}
	limit := int64(req.Limit)
	if limit <= 0 {
		limit = SearchDefaultLimit
	}
	q.Skip = pageSkip(req.Page, 0, limit)
	q.Limit = limit

	blogs, err := s.blogs.ListBlogs(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.blogViews(ctx, blogs)
}

// CountSearchBlogs counts published blogs matching a tag, title or author
func (s *ContentService) CountSearchBlogs(ctx context.Context, req models.SearchBlogsRequest) (int64, error) {
	q, err := searchQuery(req)
	if err != nil {
		return 0, err
	}
	q.ExcludeSlug = ""
	return s.blogs.CountBlogs(ctx, q)
}

// GetBlog returns a blog by slug. Reading (any mode except "edit") counts a
// read on the blog and its author. Drafts are only served when draft is set.
func (s *ContentService) GetBlog(ctx context.Context, slug string, draft bool, mode string) (*models.BlogView, error) {
	blog, err := s.blogs.GetBlogBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if blog.Draft && !draft {
		return nil, apperr.Forbidden("You can not access the blog")
	}

	if mode != "edit" {
		if blog, err = s.blogs.IncrementReads(ctx, slug, 1); err != nil {
			return nil, err
		}
		if err := s.users.IncrementTotalReads(ctx, blog.Author, 1); err != nil {
			s.log.Warn().Err(err).Str("blog", slug).Msg("failed to count read on author")
		}
	}

	views, err := s.blogViews(ctx, []models.Blog{*blog})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UserBlogs returns a page of the author's own blogs filtered by draft state and title
func (s *ContentService) UserBlogs(ctx context.Context, author primitive.ObjectID, req models.UserBlogsRequest) ([]models.Blog, error) {
	draft := req.Draft
	return s.blogs.ListBlogs(ctx, models.BlogQuery{
		Author: &author,
		Draft:  &draft,
		Title:  req.Query,
		Skip:   pageSkip(req.Page, req.DeletedDocCount, BlogPageSize),
		Limit:  BlogPageSize,
	})
}

// CountUserBlogs counts the author's blogs filtered by draft state and title
func (s *ContentService) CountUserBlogs(ctx context.Context, author primitive.ObjectID, draft bool, query string) (int64, error) {
	return s.blogs.CountBlogs(ctx, models.BlogQuery{Author: &author, Draft: &draft, Title: query})
}

// DeleteBlog removes the author's blog with its comments and notifications
func (s *ContentService) DeleteBlog(ctx context.Context, author primitive.ObjectID, slug string) error {
	var deleted *models.Blog
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		blog, err := s.blogs.DeleteBlog(ctx, slug, author)
		if err != nil {
			return err
		}
		deleted = blog
		if _, err := s.notifications.DeleteByBlog(ctx, blog.ID); err != nil {
			return err
		}
		if _, err := s.comments.DeleteByBlog(ctx, blog.ID); err != nil {
			return err
		}
		return s.users.RemoveBlog(ctx, author, blog.ID, publishedDelta(blog.Draft))
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("blog", deleted.BlogID).Msg("blog deleted")
	return nil
}

func (s *ContentService) blogViews(ctx context.Context, blogs []models.Blog) ([]models.BlogView, error) {
	ids := make([]primitive.ObjectID, 0, len(blogs))
	for _, b := range blogs {
		ids = append(ids, b.Author)
	}
	users, err := s.users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	authors := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		authors[users[i].ID] = users[i].ToSummary()
	}

	views := make([]models.BlogView, len(blogs))
	for i := range blogs {
		views[i] = models.BlogView{Blog: &blogs[i], Author: authors[blogs[i].Author]}
	}
	return views, nil
}
