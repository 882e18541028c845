package services

import (
	"context"
	"strings"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// CommentPageSize is the number of comments or replies returned per request
	CommentPageSize = 5
	// NotificationPageSize is the number of feed entries per page
	NotificationPageSize = 5
)

// EngagementService keeps likes, comments and notifications consistent with
// the denormalized counters on blogs.
type EngagementService struct {
	blogs         repositories.BlogRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	tx            repositories.Transactor
	log           zerolog.Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	blogs repositories.BlogRepository,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	tx repositories.Transactor,
	log zerolog.Logger,
) *EngagementService {
	return &EngagementService{
		blogs:         blogs,
		comments:      comments,
		notifications: notifications,
		users:         users,
		tx:            tx,
		log:           log.With().Str("component", "engagement").Logger(),
	}
}

// SetLike moves the actor's like on a blog to the requested state and returns
// the resulting state. The stored like notification is the only source of
// truth: the counter moves only when a like is actually created or removed.
func (s *EngagementService) SetLike(ctx context.Context, actor, blogID primitive.ObjectID, like bool) (bool, error) {
	blog, err := s.blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return false, err
	}

	liked := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if !like {
			liked = false
			removed, err := s.notifications.DeleteLike(ctx, actor, blog.ID)
			if err != nil || !removed {
				return err
			}
			return s.blogs.UpdateActivity(ctx, blog.ID, models.ActivityDelta{Likes: -1})
		}

		liked = true
		exists, err := s.notifications.LikeExists(ctx, actor, blog.ID)
		if err != nil || exists {
			return err
		}
		err = s.notifications.CreateNotification(ctx, &models.Notification{
			Type:            models.NotificationTypeLike,
			Blog:            blog.ID,
			NotificationFor: blog.Author,
			User:            actor,
		})
		if apperr.IsConflict(err) {
			// a concurrent request from the same actor won the insert
			return nil
		}
		if err != nil {
			return err
		}
		return s.blogs.UpdateActivity(ctx, blog.ID, models.ActivityDelta{Likes: 1})
	})
	if err != nil {
		return false, err
	}

	s.log.Debug().Str("blog", blog.BlogID).Str("actor", actor.Hex()).Bool("liked", liked).Msg("like state set")
	return liked, nil
}

// IsLiked reports whether the actor currently likes the blog
func (s *EngagementService) IsLiked(ctx context.Context, actor, blogID primitive.ObjectID) (bool, error) {
	return s.notifications.LikeExists(ctx, actor, blogID)
}

// AddCommentInput describes a new comment or reply
type AddCommentInput struct {
	Actor      primitive.ObjectID
	Blog       primitive.ObjectID
	BlogAuthor *primitive.ObjectID // as sent by the client; the stored author wins
	Text       string
	ReplyingTo *primitive.ObjectID
}

// AddComment stores a comment or reply, links it to its blog (and parent),
// bumps the blog counters and notifies the blog author or parent commenter.
func (s *EngagementService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperr.Validation("Write something to leave a comment")
	}

	blog, err := s.blogs.GetBlogByID(ctx, in.Blog)
	if err != nil {
		return nil, err
	}
	if in.BlogAuthor != nil && *in.BlogAuthor != blog.Author {
		s.log.Warn().Str("blog", blog.BlogID).Str("claimed_author", in.BlogAuthor.Hex()).Msg("client sent a stale blog author")
	}

	comment := &models.Comment{
		BlogID:      blog.ID,
		BlogAuthor:  blog.Author,
		Comment:     text,
		CommentedBy: in.Actor,
	}
	notification := &models.Notification{
		Type:            models.NotificationTypeComment,
		Blog:            blog.ID,
		NotificationFor: blog.Author,
		User:            in.Actor,
	}
	delta := models.ActivityDelta{Comments: 1, ParentComments: 1}

	if in.ReplyingTo != nil {
		parent, err := s.comments.GetCommentByID(ctx, *in.ReplyingTo)
		if err != nil {
			return nil, err
		}
		if parent.BlogID != blog.ID {
			return nil, apperr.Validation("The comment you are replying to belongs to another blog")
		}
		comment.IsReply = true
		comment.Parent = &parent.ID
		notification.Type = models.NotificationTypeReply
		notification.NotificationFor = parent.CommentedBy
		notification.RepliedOnComment = &parent.ID
		delta.ParentComments = 0
	}

	var created, linked bool
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		created, linked = false, false
		if err := s.comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		created = true
		if comment.Parent != nil {
			if err := s.comments.AddChild(ctx, *comment.Parent, comment.ID); err != nil {
				return err
			}
		}
		if err := s.blogs.AddComment(ctx, blog.ID, comment.ID, delta); err != nil {
			return err
		}
		linked = true
		notification.Comment = &comment.ID
		return s.notifications.CreateNotification(ctx, notification)
	})
	if err != nil {
		if created && !linked {
			s.discardComment(ctx, comment)
		}
		return nil, err
	}

	s.log.Info().Str("blog", blog.BlogID).Str("comment", comment.ID.Hex()).Bool("reply", comment.IsReply).Msg("comment added")
	return comment, nil
}

// discardComment removes a comment whose creation failed before it was
// linked to its blog. Without a transaction the insert would otherwise
// survive as an orphan; inside one both calls find nothing to undo.
func (s *EngagementService) discardComment(ctx context.Context, comment *models.Comment) {
	if _, err := s.comments.DeleteComments(ctx, []primitive.ObjectID{comment.ID}); err != nil {
		s.log.Error().Err(err).Str("comment", comment.ID.Hex()).Msg("failed to discard unlinked comment")
		return
	}
	if comment.Parent != nil {
		if err := s.comments.RemoveChild(ctx, *comment.Parent, comment.ID); err != nil && !apperr.IsNotFound(err) {
			s.log.Warn().Err(err).Str("comment", comment.ID.Hex()).Msg("failed to unlink discarded reply")
		}
	}
}

// DeleteComment removes a comment together with its whole reply thread.
// The commenter and the blog author may delete; anyone else is forbidden.
func (s *EngagementService) DeleteComment(ctx context.Context, actor, commentID primitive.ObjectID) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	// The blog author may also delete: it is the only way for an author to
	// remove abusive comments from their own blog.
	if actor != comment.CommentedBy && actor != comment.BlogAuthor {
		return apperr.Forbidden("You can not delete the comment")
	}

	ids, err := s.collectThread(ctx, comment)
	if err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.comments.DeleteComments(ctx, ids)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return apperr.NotFound("Comment not found")
		}
		if _, err := s.notifications.DeleteByComments(ctx, ids); err != nil {
			return err
		}
		if comment.IsReply && comment.Parent != nil {
			if err := s.comments.RemoveChild(ctx, *comment.Parent, comment.ID); err != nil && !apperr.IsNotFound(err) {
				return err
			}
		}

		delta := models.ActivityDelta{Comments: -int(deleted)}
		if !comment.IsReply {
			delta.ParentComments = -1
		}
		err = s.blogs.RemoveComments(ctx, comment.BlogID, ids, delta)
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("comment", commentID.Hex()).Int("thread_size", len(ids)).Msg("comment deleted")
	return nil
}

// collectThread returns the comment and all of its descendants
func (s *EngagementService) collectThread(ctx context.Context, root *models.Comment) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{root.ID}
	seen := map[primitive.ObjectID]bool{root.ID: true}
	frontier := root.Children

	for len(frontier) > 0 {
		children, err := s.comments.GetCommentsByIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = nil
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			ids = append(ids, c.ID)
			frontier = append(frontier, c.Children...)
		}
	}
	return ids, nil
}

// ListBlogComments returns a page of top-level comments, newest first
func (s *EngagementService) ListBlogComments(ctx context.Context, blogID primitive.ObjectID, skip int64) ([]models.CommentView, error) {
	comments, err := s.comments.ListByBlog(ctx, blogID, skip, CommentPageSize)
	if err != nil {
		return nil, err
	}
	return s.commentViews(ctx, comments)
}

// ListReplies returns a page of replies to a comment, oldest first
func (s *EngagementService) ListReplies(ctx context.Context, commentID primitive.ObjectID, skip int64) ([]models.CommentView, error) {
	replies, err := s.comments.ListReplies(ctx, commentID, skip, CommentPageSize)
	if err != nil {
		return nil, err
	}
	return s.commentViews(ctx, replies)
}

func (s *EngagementService) commentViews(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentedBy)
	}
	users, err := s.userSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i := range comments {
		views[i] = models.CommentView{Comment: &comments[i], CommentedBy: users[comments[i].CommentedBy]}
	}
	return views, nil
}

func (s *EngagementService) userSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	users, err := s.users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		out[users[i].ID] = users[i].ToSummary()
	}
	return out, nil
}

// notificationType converts a feed filter into a type; "all" means no filter
func notificationType(filter string) (string, error) {
	switch filter {
	case "", models.NotificationFilterAll:
		return "", nil
	case models.NotificationTypeLike, models.NotificationTypeComment, models.NotificationTypeReply:
		return filter, nil
	default:
		return "", apperr.Validation("Unknown notification filter: " + filter)
	}
}

// ListNotifications returns one feed page, newest first, and marks it seen.
// deletedDocCount shifts the window back by the entries the client removed
// since loading earlier pages; it is a client-side correction only.
func (s *EngagementService) ListNotifications(ctx context.Context, recipient primitive.ObjectID, page int, filter string, deletedDocCount int) ([]models.NotificationView, error) {
	typ, err := notificationType(filter)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	skip := (page-1)*NotificationPageSize - deletedDocCount
	if skip < 0 {
		skip = 0
	}

	notifications, err := s.notifications.List(ctx, models.NotificationQuery{
		Recipient: recipient,
		Type:      typ,
		Skip:      int64(skip),
		Limit:     NotificationPageSize,
	})
	if err != nil {
		return nil, err
	}

	views, err := s.enrichNotifications(ctx, notifications)
	if err != nil {
		return nil, err
	}

	unseen := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		if !n.Seen {
			unseen = append(unseen, n.ID)
		}
	}
	if err := s.notifications.MarkSeen(ctx, unseen); err != nil {
		s.log.Warn().Err(err).Str("recipient", recipient.Hex()).Msg("failed to mark notifications seen")
	}
	return views, nil
}

func (s *EngagementService) enrichNotifications(ctx context.Context, notifications []models.Notification) ([]models.NotificationView, error) {
	actorIDs := make([]primitive.ObjectID, 0, len(notifications))
	commentIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.User)
		if n.Comment != nil {
			commentIDs = append(commentIDs, *n.Comment)
		}
	}

	actors, err := s.userSummaries(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByIDs(ctx, uniqueIDs(commentIDs))
	if err != nil {
		return nil, err
	}
	commentText := make(map[primitive.ObjectID]string, len(comments))
	for _, c := range comments {
		commentText[c.ID] = c.Comment
	}

	blogCache := make(map[primitive.ObjectID]*models.NotificationBlog)
	views := make([]models.NotificationView, len(notifications))
	for i, n := range notifications {
		view := models.NotificationView{ID: n.ID, Type: n.Type, Seen: n.Seen, CreatedAt: n.CreatedAt}

		if actor, ok := actors[n.User]; ok {
			view.User = &actor
		}

		blog, cached := blogCache[n.Blog]
		if !cached {
			b, err := s.blogs.GetBlogByID(ctx, n.Blog)
			switch {
			case err == nil:
				blog = &models.NotificationBlog{ID: b.ID, Title: b.Title, BlogID: b.BlogID}
			case !apperr.IsNotFound(err):
				return nil, err
			}
			blogCache[n.Blog] = blog
		}
		view.Blog = blog

		if n.Comment != nil {
			if text, ok := commentText[*n.Comment]; ok {
				view.Comment = &models.NotificationComment{ID: *n.Comment, Comment: text}
			}
		}
		views[i] = view
	}
	return views, nil
}

// HasUnseenNotifications reports whether the recipient has unseen activity from others
func (s *EngagementService) HasUnseenNotifications(ctx context.Context, recipient primitive.ObjectID) (bool, error) {
	return s.notifications.HasUnseen(ctx, recipient)
}

// CountNotifications counts the recipient's feed entries for a filter
func (s *EngagementService) CountNotifications(ctx context.Context, recipient primitive.ObjectID, filter string) (int64, error) {
	typ, err := notificationType(filter)
	if err != nil {
		return 0, err
	}
	return s.notifications.Count(ctx, models.NotificationQuery{Recipient: recipient, Type: typ})
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
