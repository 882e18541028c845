// Package mocks provides in-memory implementations of the repository
// interfaces. They honour the same constraints as the MongoDB repositories
// (unique likes, unique usernames and emails, not-found on missing targets).
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clock hands out strictly increasing timestamps so ordering is deterministic
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now()
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

var sharedClock = &clock{}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeIDs(ids []primitive.ObjectID, remove []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if !containsID(remove, v) {
			out = append(out, v)
		}
	}
	return out
}

func page[T any](items []T, skip, limit int64) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(items)) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return items
}

// Transactor runs fn directly and counts invocations
type Transactor struct {
	Calls int
	Err   error
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	if t.Err != nil {
		return t.Err
	}
	return fn(ctx)
}

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	mu    sync.Mutex
	Users map[primitive.ObjectID]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[primitive.ObjectID]*models.User)}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.PersonalInfo.Email == user.PersonalInfo.Email || u.PersonalInfo.Username == user.PersonalInfo.Username {
			return apperr.Conflict("duplicate user")
		}
	}
	user.ID = primitive.NewObjectID()
	user.JoinedAt = sharedClock.now()
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (m *MockUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.PersonalInfo.Email == email })
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.PersonalInfo.Username == username })
}

func (m *MockUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := m.Users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *MockUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.Users {
		if strings.Contains(strings.ToLower(u.PersonalInfo.Username), strings.ToLower(query)) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonalInfo.Username < out[j].PersonalInfo.Username })
	return page(out, 0, limit), nil
}

func (m *MockUserRepository) update(id primitive.ObjectID, fn func(*models.User) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	return fn(u)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return m.update(id, func(u *models.User) error { u.PersonalInfo.Password = hash; return nil })
}

func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return m.update(id, func(u *models.User) error { u.PersonalInfo.ProfileImg = url; return nil })
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio string, links models.SocialLinks) error {
	m.mu.Lock()
	for otherID, other := range m.Users {
		if otherID != id && other.PersonalInfo.Username == username {
			m.mu.Unlock()
			return apperr.Conflict("duplicate user")
		}
	}
	m.mu.Unlock()
	return m.update(id, func(u *models.User) error {
		u.PersonalInfo.Username = username
		u.PersonalInfo.Bio = bio
		u.SocialLinks = links
		return nil
	})
}

func (m *MockUserRepository) AddBlog(ctx context.Context, userID, blogID primitive.ObjectID, postDelta int) error {
	return m.update(userID, func(u *models.User) error {
		u.Blogs = append(u.Blogs, blogID)
		u.AccountInfo.TotalPosts += postDelta
		return nil
	})
}

func (m *MockUserRepository) RemoveBlog(ctx context.Context, userID, blogID primitive.ObjectID, postDelta int) error {
	return m.update(userID, func(u *models.User) error {
		u.Blogs = removeIDs(u.Blogs, []primitive.ObjectID{blogID})
		u.AccountInfo.TotalPosts -= postDelta
		return nil
	})
}

func (m *MockUserRepository) IncrementTotalReads(ctx context.Context, userID primitive.ObjectID, n int) error {
	return m.update(userID, func(u *models.User) error { u.AccountInfo.TotalReads += n; return nil })
}

func (m *MockUserRepository) IncrementTotalPosts(ctx context.Context, userID primitive.ObjectID, n int) error {
	return m.update(userID, func(u *models.User) error { u.AccountInfo.TotalPosts += n; return nil })
}

func (m *MockUserRepository) SetTotalPosts(ctx context.Context, userID primitive.ObjectID, n int) error {
	return m.update(userID, func(u *models.User) error { u.AccountInfo.TotalPosts = n; return nil })
}

func (m *MockUserRepository) ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(m.Users))
	for id := range m.Users {
		ids = append(ids, id)
	}
	return ids, nil
}

// MockBlogRepository is an in-memory BlogRepository
type MockBlogRepository struct {
	mu    sync.Mutex
	Blogs map[primitive.ObjectID]*models.Blog
	// ActivityErr, when set, fails every counter update
	ActivityErr error
}

func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{Blogs: make(map[primitive.ObjectID]*models.Blog)}
}

func (m *MockBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Blogs {
		if b.BlogID == blog.BlogID {
			return apperr.Conflict("duplicate blog")
		}
	}
	blog.ID = primitive.NewObjectID()
	blog.PublishedAt = sharedClock.now()
	if blog.Comments == nil {
		blog.Comments = []primitive.ObjectID{}
	}
	stored := *blog
	m.Blogs[blog.ID] = &stored
	return nil
}

func (m *MockBlogRepository) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Blogs[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, apperr.NotFound("Blog not found")
}

func (m *MockBlogRepository) bySlug(slug string) *models.Blog {
	for _, b := range m.Blogs {
		if b.BlogID == slug {
			return b
		}
	}
	return nil
}

func (m *MockBlogRepository) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b := m.bySlug(slug); b != nil {
		c := *b
		return &c, nil
	}
	return nil, apperr.NotFound("Blog not found")
}

func (m *MockBlogRepository) UpdateBlog(ctx context.Context, slug string, author primitive.ObjectID, update models.BlogUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bySlug(slug)
	if b == nil || b.Author != author {
		return apperr.NotFound("Blog not found")
	}
	b.Title, b.Banner, b.Des = update.Title, update.Banner, update.Des
	b.Content, b.Tags, b.Draft = update.Content, update.Tags, update.Draft
	return nil
}

func (m *MockBlogRepository) DeleteBlog(ctx context.Context, slug string, author primitive.ObjectID) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bySlug(slug)
	if b == nil || b.Author != author {
		return nil, apperr.NotFound("Blog not found")
	}
	delete(m.Blogs, b.ID)
	return b, nil
}

func (m *MockBlogRepository) matching(q models.BlogQuery) []models.Blog {
	var out []models.Blog
	for _, b := range m.Blogs {
		if q.Draft != nil && b.Draft != *q.Draft {
			continue
		}
		if q.Tag != "" && !containsString(b.Tags, q.Tag) {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(q.Title)) {
			continue
		}
		if q.Author != nil && b.Author != *q.Author {
			continue
		}
		if q.ExcludeSlug != "" && b.BlogID == q.ExcludeSlug {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.SortTrending {
			if out[i].Activity.TotalReads != out[j].Activity.TotalReads {
				return out[i].Activity.TotalReads > out[j].Activity.TotalReads
			}
			if out[i].Activity.TotalLikes != out[j].Activity.TotalLikes {
				return out[i].Activity.TotalLikes > out[j].Activity.TotalLikes
			}
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *MockBlogRepository) ListBlogs(ctx context.Context, q models.BlogQuery) ([]models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.matching(q), q.Skip, q.Limit), nil
}

func (m *MockBlogRepository) CountBlogs(ctx context.Context, q models.BlogQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(q))), nil
}

func (m *MockBlogRepository) IncrementReads(ctx context.Context, slug string, n int) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bySlug(slug)
	if b == nil {
		return nil, apperr.NotFound("Blog not found")
	}
	b.Activity.TotalReads += n
	c := *b
	return &c, nil
}

func (m *MockBlogRepository) apply(id primitive.ObjectID, fn func(*models.Blog)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ActivityErr != nil {
		return m.ActivityErr
	}
	b, ok := m.Blogs[id]
	if !ok {
		return apperr.NotFound("Blog not found")
	}
	fn(b)
	return nil
}

func applyDelta(b *models.Blog, d models.ActivityDelta) {
	b.Activity.TotalLikes += d.Likes
	b.Activity.TotalComments += d.Comments
	b.Activity.TotalReads += d.Reads
	b.Activity.TotalParentComments += d.ParentComments
}

func (m *MockBlogRepository) UpdateActivity(ctx context.Context, id primitive.ObjectID, delta models.ActivityDelta) error {
	return m.apply(id, func(b *models.Blog) { applyDelta(b, delta) })
}

func (m *MockBlogRepository) AddComment(ctx context.Context, id, commentID primitive.ObjectID, delta models.ActivityDelta) error {
	return m.apply(id, func(b *models.Blog) {
		b.Comments = append(b.Comments, commentID)
		applyDelta(b, delta)
	})
}

func (m *MockBlogRepository) RemoveComments(ctx context.Context, id primitive.ObjectID, commentIDs []primitive.ObjectID, delta models.ActivityDelta) error {
	return m.apply(id, func(b *models.Blog) {
		b.Comments = removeIDs(b.Comments, commentIDs)
		applyDelta(b, delta)
	})
}

func (m *MockBlogRepository) SetEngagement(ctx context.Context, id primitive.ObjectID, prev, next models.Engagement) (bool, error) {
	applied := false
	err := m.apply(id, func(b *models.Blog) {
		a := b.Activity
		if a.TotalLikes != prev.Activity.TotalLikes ||
			a.TotalComments != prev.Activity.TotalComments ||
			a.TotalParentComments != prev.Activity.TotalParentComments ||
			!equalIDs(b.Comments, prev.Comments) {
			return
		}
		b.Activity.TotalLikes = next.Activity.TotalLikes
		b.Activity.TotalComments = next.Activity.TotalComments
		b.Activity.TotalParentComments = next.Activity.TotalParentComments
		b.Comments = append([]primitive.ObjectID{}, next.Comments...)
		applied = true
	})
	return applied, err
}

// SetState overwrites a blog's counters and comment links unconditionally
func (m *MockBlogRepository) SetState(id primitive.ObjectID, activity models.Activity, comments []primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Blogs[id]; ok {
		b.Activity = activity
		b.Comments = append([]primitive.ObjectID{}, comments...)
	}
}

func equalIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (m *MockBlogRepository) ListBlogIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(m.Blogs))
	for id := range m.Blogs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockBlogRepository) CountPublishedByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	draft := false
	return m.CountBlogs(ctx, models.BlogQuery{Author: &author, Draft: &draft})
}

// MockCommentRepository is an in-memory CommentRepository
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments map[primitive.ObjectID]*models.Comment
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (m *MockCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.CommentedAt = sharedClock.now()
	if comment.Children == nil {
		comment.Children = []primitive.ObjectID{}
	}
	stored := *comment
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Comments[id]; ok {
		cp := *c
		cp.Children = append([]primitive.ObjectID{}, c.Children...)
		return &cp, nil
	}
	return nil, apperr.NotFound("Comment not found")
}

func (m *MockCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, id := range ids {
		if c, ok := m.Comments[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MockCommentRepository) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Comments[parentID]
	if !ok {
		return apperr.NotFound("Comment not found")
	}
	p.Children = append(p.Children, childID)
	return nil
}

func (m *MockCommentRepository) RemoveChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Comments[parentID]
	if !ok {
		return apperr.NotFound("Comment not found")
	}
	p.Children = removeIDs(p.Children, []primitive.ObjectID{childID})
	return nil
}

func (m *MockCommentRepository) filter(match func(*models.Comment) bool, newestFirst bool) []models.Comment {
	var out []models.Comment
	for _, c := range m.Comments {
		if match(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CommentedAt.After(out[j].CommentedAt)
		}
		return out[i].CommentedAt.Before(out[j].CommentedAt)
	})
	return out
}

func (m *MockCommentRepository) ListByBlog(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(c *models.Comment) bool { return c.BlogID == blogID && !c.IsReply }, true)
	return page(out, skip, limit), nil
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(c *models.Comment) bool { return c.Parent != nil && *c.Parent == parentID }, false)
	return page(out, skip, limit), nil
}

func (m *MockCommentRepository) ListIDsByBlog(ctx context.Context, blogID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(c *models.Comment) bool { return c.BlogID == blogID }, false)
	ids := make([]primitive.ObjectID, len(out))
	for i, c := range out {
		ids[i] = c.ID
	}
	return ids, nil
}

func (m *MockCommentRepository) CountByBlog(ctx context.Context, blogID primitive.ObjectID, topLevelOnly bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(c *models.Comment) bool { return c.BlogID == blogID && (!topLevelOnly || !c.IsReply) }, false)
	return int64(len(out)), nil
}

func (m *MockCommentRepository) DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.Comments[id]; ok {
			delete(m.Comments, id)
			n++
		}
	}
	return n, nil
}

func (m *MockCommentRepository) DeleteByBlog(ctx context.Context, blogID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.Comments {
		if c.BlogID == blogID {
			delete(m.Comments, id)
			n++
		}
	}
	return n, nil
}

// MockNotificationRepository is an in-memory NotificationRepository
type MockNotificationRepository struct {
	mu            sync.Mutex
	Notifications map[primitive.ObjectID]*models.Notification
	// CreateErr, when set, fails every insert
	CreateErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{Notifications: make(map[primitive.ObjectID]*models.Notification)}
}

// Insert stores n as-is, keeping a preset CreatedAt. Used to seed fixtures.
func (m *MockNotificationRepository) Insert(n models.Notification) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = sharedClock.now()
	}
	m.Notifications[n.ID] = &n
	return n.ID
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if n.Type == models.NotificationTypeLike {
		for _, existing := range m.Notifications {
			if existing.Type == models.NotificationTypeLike && existing.User == n.User && existing.Blog == n.Blog {
				return apperr.Conflict("duplicate notification")
			}
		}
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = sharedClock.now()
	stored := *n
	m.Notifications[n.ID] = &stored
	return nil
}

func (m *MockNotificationRepository) findLike(user, blog primitive.ObjectID) *models.Notification {
	for _, n := range m.Notifications {
		if n.Type == models.NotificationTypeLike && n.User == user && n.Blog == blog {
			return n
		}
	}
	return nil
}

func (m *MockNotificationRepository) LikeExists(ctx context.Context, user, blog primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLike(user, blog) != nil, nil
}

func (m *MockNotificationRepository) DeleteLike(ctx context.Context, user, blog primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.findLike(user, blog); n != nil {
		delete(m.Notifications, n.ID)
		return true, nil
	}
	return false, nil
}

func (m *MockNotificationRepository) CountLikes(ctx context.Context, blog primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.Notifications {
		if v.Type == models.NotificationTypeLike && v.Blog == blog {
			n++
		}
	}
	return n, nil
}

func (m *MockNotificationRepository) DeleteByComments(ctx context.Context, commentIDs []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, v := range m.Notifications {
		if v.Comment != nil && containsID(commentIDs, *v.Comment) {
			delete(m.Notifications, id)
			n++
		}
	}
	return n, nil
}

func (m *MockNotificationRepository) DeleteByBlog(ctx context.Context, blog primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, v := range m.Notifications {
		if v.Blog == blog {
			delete(m.Notifications, id)
			n++
		}
	}
	return n, nil
}

func (m *MockNotificationRepository) feed(q models.NotificationQuery) []models.Notification {
	var out []models.Notification
	for _, v := range m.Notifications {
		if v.NotificationFor != q.Recipient || v.User == q.Recipient {
			continue
		}
		if q.Type != "" && v.Type != q.Type {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MockNotificationRepository) List(ctx context.Context, q models.NotificationQuery) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.feed(q), q.Skip, q.Limit), nil
}

func (m *MockNotificationRepository) Count(ctx context.Context, q models.NotificationQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.feed(q))), nil
}

func (m *MockNotificationRepository) HasUnseen(ctx context.Context, recipient primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.feed(models.NotificationQuery{Recipient: recipient}) {
		if !v.Seen {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockNotificationRepository) MarkSeen(ctx context.Context, ids []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if v, ok := m.Notifications[id]; ok {
			v.Seen = true
		}
	}
	return nil
}

// Filter returns stored notifications accepted by match
func (m *MockNotificationRepository) Filter(match func(models.Notification) bool) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, v := range m.Notifications {
		if match(*v) {
			out = append(out, *v)
		}
	}
	return out
}

// MockReconcileRunRepository is an in-memory ReconcileRunRepository
type MockReconcileRunRepository struct {
	mu   sync.Mutex
	Runs []models.ReconcileRun
}

func (m *MockReconcileRunRepository) CreateRun(ctx context.Context, run *models.ReconcileRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = uint(len(m.Runs) + 1)
	m.Runs = append(m.Runs, *run)
	return nil
}

func (m *MockReconcileRunRepository) LatestRuns(ctx context.Context, limit int) ([]models.ReconcileRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ReconcileRun, 0, len(m.Runs))
	for i := len(m.Runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Runs[i])
	}
	return out, nil
}
