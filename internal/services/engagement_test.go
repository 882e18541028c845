package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/mocks"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type engagementFixture struct {
	users         *mocks.MockUserRepository
	blogs         *mocks.MockBlogRepository
	comments      *mocks.MockCommentRepository
	notifications *mocks.MockNotificationRepository
	tx            *mocks.Transactor
	svc           *EngagementService
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()
	f := &engagementFixture{
		users:         mocks.NewMockUserRepository(),
		blogs:         mocks.NewMockBlogRepository(),
		comments:      mocks.NewMockCommentRepository(),
		notifications: mocks.NewMockNotificationRepository(),
		tx:            &mocks.Transactor{},
	}
	f.svc = NewEngagementService(f.blogs, f.comments, f.notifications, f.users, f.tx, zerolog.Nop())
	return f
}

func (f *engagementFixture) user(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	u := &models.User{PersonalInfo: models.PersonalInfo{
		Fullname: username + " fullname",
		Email:    username + "@example.com",
		Username: username,
	}}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u.ID
}

func (f *engagementFixture) blog(t *testing.T, author primitive.ObjectID, slug string) primitive.ObjectID {
	t.Helper()
	b := &models.Blog{BlogID: slug, Title: "Title of " + slug, Author: author}
	require.NoError(t, f.blogs.CreateBlog(context.Background(), b))
	return b.ID
}

func (f *engagementFixture) activity(t *testing.T, id primitive.ObjectID) models.Activity {
	t.Helper()
	b, err := f.blogs.GetBlogByID(context.Background(), id)
	require.NoError(t, err)
	return b.Activity
}

func (f *engagementFixture) likeNotifications(user, blog primitive.ObjectID) []models.Notification {
	return f.notifications.Filter(func(n models.Notification) bool {
		return n.Type == models.NotificationTypeLike && n.User == user && n.Blog == blog
	})
}

func TestSetLike(t *testing.T) {
	ctx := context.Background()

	t.Run("like then unlike", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		reader := f.user(t, "reader")
		blog := f.blog(t, author, "first-post")

		liked, err := f.svc.SetLike(ctx, reader, blog, true)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 1, f.activity(t, blog).TotalLikes)

		notes := f.likeNotifications(reader, blog)
		require.Len(t, notes, 1)
		assert.Equal(t, author, notes[0].NotificationFor)

		liked, err = f.svc.SetLike(ctx, reader, blog, false)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, 0, f.activity(t, blog).TotalLikes)
		assert.Empty(t, f.likeNotifications(reader, blog))
	})

	t.Run("liking twice keeps one like", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		reader := f.user(t, "reader")
		blog := f.blog(t, author, "post")

		for i := 0; i < 2; i++ {
			liked, err := f.svc.SetLike(ctx, reader, blog, true)
			require.NoError(t, err)
			assert.True(t, liked)
		}
		assert.Equal(t, 1, f.activity(t, blog).TotalLikes)
		assert.Len(t, f.likeNotifications(reader, blog), 1)
	})

	t.Run("unlike without like is a no-op", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		reader := f.user(t, "reader")
		other := f.user(t, "other")
		blog := f.blog(t, author, "post")

		_, err := f.svc.SetLike(ctx, other, blog, true)
		require.NoError(t, err)

		liked, err := f.svc.SetLike(ctx, reader, blog, false)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, 1, f.activity(t, blog).TotalLikes)
		assert.Len(t, f.likeNotifications(other, blog), 1)
	})

	t.Run("counter equals actors whose last action was like", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		blog := f.blog(t, author, "post")
		a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")

		steps := []struct {
			actor primitive.ObjectID
			like  bool
		}{
			{a, true}, {b, true}, {a, false}, {c, true}, {b, true},
			{c, false}, {a, true}, {c, false}, {b, false}, {b, true},
		}
		last := map[primitive.ObjectID]bool{}
		for _, s := range steps {
			_, err := f.svc.SetLike(ctx, s.actor, blog, s.like)
			require.NoError(t, err)
			last[s.actor] = s.like
		}

		want := 0
		for _, liked := range last {
			if liked {
				want++
			}
		}
		assert.Equal(t, want, f.activity(t, blog).TotalLikes)
	})

	t.Run("unknown blog is not found", func(t *testing.T) {
		f := newEngagementFixture(t)
		reader := f.user(t, "reader")

		_, err := f.svc.SetLike(ctx, reader, primitive.NewObjectID(), true)
		assert.True(t, apperr.IsNotFound(err))
		assert.Zero(t, f.tx.Calls)
	})

	t.Run("store failure surfaces as internal", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		reader := f.user(t, "reader")
		blog := f.blog(t, author, "post")
		f.notifications.CreateErr = apperr.Internal("notification", errors.New("connection reset"))

		_, err := f.svc.SetLike(ctx, reader, blog, true)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
		assert.Equal(t, 0, f.activity(t, blog).TotalLikes)
	})
}

func TestIsLiked(t *testing.T) {
	ctx := context.Background()
	f := newEngagementFixture(t)
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	blog := f.blog(t, author, "post")

	liked, err := f.svc.IsLiked(ctx, reader, blog)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = f.svc.SetLike(ctx, reader, blog, true)
	require.NoError(t, err)
	liked, err = f.svc.IsLiked(ctx, reader, blog)
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = f.svc.SetLike(ctx, reader, blog, false)
	require.NoError(t, err)
	liked, err = f.svc.IsLiked(ctx, reader, blog)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("top-level then reply", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		bob := f.user(t, "bob")
		blog := f.blog(t, author, "post")

		top, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, BlogAuthor: &author, Text: "  nice post  "})
		require.NoError(t, err)
		assert.Equal(t, "nice post", top.Comment)
		assert.False(t, top.IsReply)
		a := f.activity(t, blog)
		assert.Equal(t, 1, a.TotalComments)
		assert.Equal(t, 1, a.TotalParentComments)

		reply, err := f.svc.AddComment(ctx, AddCommentInput{Actor: bob, Blog: blog, Text: "agreed", ReplyingTo: &top.ID})
		require.NoError(t, err)
		assert.True(t, reply.IsReply)
		require.NotNil(t, reply.Parent)
		assert.Equal(t, top.ID, *reply.Parent)
		a = f.activity(t, blog)
		assert.Equal(t, 2, a.TotalComments)
		assert.Equal(t, 1, a.TotalParentComments)

		parent, err := f.comments.GetCommentByID(ctx, top.ID)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{reply.ID}, parent.Children)

		stored, err := f.blogs.GetBlogByID(ctx, blog)
		require.NoError(t, err)
		assert.ElementsMatch(t, []primitive.ObjectID{top.ID, reply.ID}, stored.Comments)

		commentNotes := f.notifications.Filter(func(n models.Notification) bool {
			return n.Comment != nil && *n.Comment == top.ID
		})
		require.Len(t, commentNotes, 1)
		assert.Equal(t, models.NotificationTypeComment, commentNotes[0].Type)
		assert.Equal(t, author, commentNotes[0].NotificationFor)
		assert.Equal(t, alice, commentNotes[0].User)

		replyNotes := f.notifications.Filter(func(n models.Notification) bool {
			return n.Comment != nil && *n.Comment == reply.ID
		})
		require.Len(t, replyNotes, 1)
		assert.Equal(t, models.NotificationTypeReply, replyNotes[0].Type)
		assert.Equal(t, alice, replyNotes[0].NotificationFor)
		require.NotNil(t, replyNotes[0].RepliedOnComment)
		assert.Equal(t, top.ID, *replyNotes[0].RepliedOnComment)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		blog := f.blog(t, author, "post")

		_, err := f.svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: blog, Text: " \n\t"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Empty(t, f.comments.Comments)
		assert.Equal(t, 0, f.activity(t, blog).TotalComments)
	})

	t.Run("stored author wins over client value", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		blog := f.blog(t, author, "post")
		bogus := primitive.NewObjectID()

		c, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, BlogAuthor: &bogus, Text: "hi"})
		require.NoError(t, err)
		assert.Equal(t, author, c.BlogAuthor)

		notes := f.notifications.Filter(func(n models.Notification) bool { return n.Type == models.NotificationTypeComment })
		require.Len(t, notes, 1)
		assert.Equal(t, author, notes[0].NotificationFor)
	})

	t.Run("reply to a comment on another blog", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		first := f.blog(t, author, "first")
		second := f.blog(t, author, "second")

		top, err := f.svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: first, Text: "hello"})
		require.NoError(t, err)

		_, err = f.svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: second, Text: "reply", ReplyingTo: &top.ID})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, 0, f.activity(t, second).TotalComments)
	})

	t.Run("missing blog or parent", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		blog := f.blog(t, author, "post")
		missing := primitive.NewObjectID()

		_, err := f.svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: missing, Text: "hi"})
		assert.True(t, apperr.IsNotFound(err))

		_, err = f.svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: blog, Text: "hi", ReplyingTo: &missing})
		assert.True(t, apperr.IsNotFound(err))
	})
}

// parentVanishes deletes the parent comment just before a reply is linked to it
type parentVanishes struct {
	*mocks.MockCommentRepository
}

func (c *parentVanishes) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	if _, err := c.MockCommentRepository.DeleteComments(ctx, []primitive.ObjectID{parentID}); err != nil {
		return err
	}
	return c.MockCommentRepository.AddChild(ctx, parentID, childID)
}

func TestAddReplyToVanishingParent(t *testing.T) {
	ctx := context.Background()
	f := newEngagementFixture(t)
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	blog := f.blog(t, author, "post")

	top, err := f.svc.AddComment(ctx, AddCommentInput{Actor: reader, Blog: blog, Text: "top"})
	require.NoError(t, err)
	before := f.activity(t, blog)

	svc := NewEngagementService(f.blogs, &parentVanishes{f.comments}, f.notifications, f.users, f.tx, zerolog.Nop())
	_, err = svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: blog, Text: "reply", ReplyingTo: &top.ID})
	assert.True(t, apperr.IsNotFound(err))

	left, err := f.comments.CountByBlog(ctx, blog, false)
	require.NoError(t, err)
	assert.Zero(t, left, "no orphan reply is left behind")
	assert.Equal(t, before, f.activity(t, blog))
	replies := f.notifications.Filter(func(n models.Notification) bool { return n.Type == models.NotificationTypeReply })
	assert.Empty(t, replies)
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("stranger is forbidden and nothing changes", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		mallory := f.user(t, "mallory")
		blog := f.blog(t, author, "post")

		c, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "mine"})
		require.NoError(t, err)
		before := f.activity(t, blog)
		notesBefore := len(f.notifications.Notifications)

		err = f.svc.DeleteComment(ctx, mallory, c.ID)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		assert.Equal(t, before, f.activity(t, blog))
		assert.Len(t, f.notifications.Notifications, notesBefore)
		_, err = f.comments.GetCommentByID(ctx, c.ID)
		assert.NoError(t, err)
	})

	t.Run("commenter deletes and second delete is not found", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		blog := f.blog(t, author, "post")

		c, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "oops"})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteComment(ctx, alice, c.ID))
		assert.Equal(t, models.Activity{}, f.activity(t, blog))
		assert.Empty(t, f.notifications.Notifications)
		stored, err := f.blogs.GetBlogByID(ctx, blog)
		require.NoError(t, err)
		assert.Empty(t, stored.Comments)

		err = f.svc.DeleteComment(ctx, alice, c.ID)
		assert.True(t, apperr.IsNotFound(err))
		assert.Equal(t, models.Activity{}, f.activity(t, blog))
	})

	t.Run("blog author may delete a reader's comment", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		blog := f.blog(t, author, "post")

		c, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "spam"})
		require.NoError(t, err)
		require.NoError(t, f.svc.DeleteComment(ctx, author, c.ID))
		assert.Empty(t, f.comments.Comments)
		assert.Equal(t, models.Activity{}, f.activity(t, blog))
	})

	t.Run("deleting a thread cascades to replies", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		bob := f.user(t, "bob")
		blog := f.blog(t, author, "post")

		top, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "top"})
		require.NoError(t, err)
		r1, err := f.svc.AddComment(ctx, AddCommentInput{Actor: bob, Blog: blog, Text: "r1", ReplyingTo: &top.ID})
		require.NoError(t, err)
		_, err = f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "r1.1", ReplyingTo: &r1.ID})
		require.NoError(t, err)
		other, err := f.svc.AddComment(ctx, AddCommentInput{Actor: bob, Blog: blog, Text: "other"})
		require.NoError(t, err)

		a := f.activity(t, blog)
		assert.Equal(t, 4, a.TotalComments)
		assert.Equal(t, 2, a.TotalParentComments)

		require.NoError(t, f.svc.DeleteComment(ctx, alice, top.ID))

		a = f.activity(t, blog)
		assert.Equal(t, 1, a.TotalComments)
		assert.Equal(t, 1, a.TotalParentComments)
		assert.Len(t, f.comments.Comments, 1)
		stored, err := f.blogs.GetBlogByID(ctx, blog)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{other.ID}, stored.Comments)
		assert.Len(t, f.notifications.Notifications, 1)
	})

	t.Run("deleting a reply keeps the parent count", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.user(t, "author")
		alice := f.user(t, "alice")
		bob := f.user(t, "bob")
		blog := f.blog(t, author, "post")

		top, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "top"})
		require.NoError(t, err)
		reply, err := f.svc.AddComment(ctx, AddCommentInput{Actor: bob, Blog: blog, Text: "reply", ReplyingTo: &top.ID})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteComment(ctx, bob, reply.ID))

		a := f.activity(t, blog)
		assert.Equal(t, 1, a.TotalComments)
		assert.Equal(t, 1, a.TotalParentComments)
		parent, err := f.comments.GetCommentByID(ctx, top.ID)
		require.NoError(t, err)
		assert.Empty(t, parent.Children)
	})
}

func TestEngagementScenario(t *testing.T) {
	ctx := context.Background()
	f := newEngagementFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	x := f.blog(t, a, "blog-x")

	_, err := f.svc.SetLike(ctx, b, x, true)
	require.NoError(t, err)
	assert.Equal(t, 1, f.activity(t, x).TotalLikes)
	likes := f.likeNotifications(b, x)
	require.Len(t, likes, 1)
	assert.Equal(t, a, likes[0].NotificationFor)

	_, err = f.svc.SetLike(ctx, b, x, false)
	require.NoError(t, err)
	assert.Equal(t, 0, f.activity(t, x).TotalLikes)
	assert.Empty(t, f.likeNotifications(b, x))

	comment, err := f.svc.AddComment(ctx, AddCommentInput{Actor: c, Blog: x, BlogAuthor: &a, Text: "great read"})
	require.NoError(t, err)
	act := f.activity(t, x)
	assert.Equal(t, 1, act.TotalComments)
	assert.Equal(t, 1, act.TotalParentComments)
	notes := f.notifications.Filter(func(n models.Notification) bool {
		return n.Type == models.NotificationTypeComment && n.NotificationFor == a && n.User == c
	})
	require.Len(t, notes, 1)

	require.NoError(t, f.svc.DeleteComment(ctx, a, comment.ID))
	assert.Equal(t, models.Activity{}, f.activity(t, x))
	assert.Empty(t, f.notifications.Notifications)
}

func TestListNotifications(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*engagementFixture, primitive.ObjectID, []primitive.ObjectID) {
		f := newEngagementFixture(t)
		me := f.user(t, "me")
		actor := f.user(t, "actor")
		blog := f.blog(t, me, "post")

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var newestFirst []primitive.ObjectID
		for i := 0; i < 12; i++ {
			typ := models.NotificationTypeComment
			if i%3 == 0 {
				typ = models.NotificationTypeLike
			}
			id := f.notifications.Insert(models.Notification{
				Type:            typ,
				Blog:            blog,
				NotificationFor: me,
				User:            actor,
				CreatedAt:       base.Add(time.Duration(i) * time.Minute),
			})
			newestFirst = append([]primitive.ObjectID{id}, newestFirst...)
		}
		// self-action that must never show up
		f.notifications.Insert(models.Notification{
			Type:            models.NotificationTypeLike,
			Blog:            blog,
			NotificationFor: me,
			User:            me,
			CreatedAt:       base.Add(time.Hour),
		})
		return f, me, newestFirst
	}

	ids := func(views []models.NotificationView) []primitive.ObjectID {
		out := make([]primitive.ObjectID, len(views))
		for i, v := range views {
			out[i] = v.ID
		}
		return out
	}

	t.Run("second page holds items six to ten", func(t *testing.T) {
		f, me, want := seed(t)

		page, err := f.svc.ListNotifications(ctx, me, 2, "all", 0)
		require.NoError(t, err)
		assert.Equal(t, want[5:10], ids(page))
		for _, v := range page {
			assert.False(t, v.Seen)
			require.NotNil(t, v.Blog)
			assert.Equal(t, "post", v.Blog.BlogID)
			require.NotNil(t, v.User)
			assert.Equal(t, "actor", v.User.PersonalInfo.Username)
		}
	})

	t.Run("deleted count shifts the window back", func(t *testing.T) {
		f, me, want := seed(t)

		page, err := f.svc.ListNotifications(ctx, me, 2, "all", 2)
		require.NoError(t, err)
		assert.Equal(t, want[3:8], ids(page))

		page, err = f.svc.ListNotifications(ctx, me, 1, "all", 4)
		require.NoError(t, err)
		assert.Equal(t, want[0:5], ids(page))
	})

	t.Run("like filter", func(t *testing.T) {
		f, me, _ := seed(t)

		page, err := f.svc.ListNotifications(ctx, me, 1, models.NotificationTypeLike, 0)
		require.NoError(t, err)
		require.Len(t, page, 4)
		for _, v := range page {
			assert.Equal(t, models.NotificationTypeLike, v.Type)
			assert.NotEqual(t, me, v.User.ID)
		}
	})

	t.Run("unknown filter", func(t *testing.T) {
		f, me, _ := seed(t)

		_, err := f.svc.ListNotifications(ctx, me, 1, "follow", 0)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("only the returned page is marked seen", func(t *testing.T) {
		f, me, want := seed(t)

		_, err := f.svc.ListNotifications(ctx, me, 1, "all", 0)
		require.NoError(t, err)

		for i, id := range want {
			assert.Equal(t, i < 5, f.notifications.Notifications[id].Seen, "notification %d", i)
		}

		again, err := f.svc.ListNotifications(ctx, me, 1, "all", 0)
		require.NoError(t, err)
		for _, v := range again {
			assert.True(t, v.Seen)
		}
	})

	t.Run("counts and unseen flag exclude self", func(t *testing.T) {
		f, me, _ := seed(t)

		total, err := f.svc.CountNotifications(ctx, me, "all")
		require.NoError(t, err)
		assert.EqualValues(t, 12, total)

		likes, err := f.svc.CountNotifications(ctx, me, models.NotificationTypeLike)
		require.NoError(t, err)
		assert.EqualValues(t, 4, likes)

		unseen, err := f.svc.HasUnseenNotifications(ctx, me)
		require.NoError(t, err)
		assert.True(t, unseen)

		for page := 1; page <= 3; page++ {
			_, err := f.svc.ListNotifications(ctx, me, page, "all", 0)
			require.NoError(t, err)
		}
		unseen, err = f.svc.HasUnseenNotifications(ctx, me)
		require.NoError(t, err)
		assert.False(t, unseen)
	})
}

func TestCommentListing(t *testing.T) {
	ctx := context.Background()
	f := newEngagementFixture(t)
	author := f.user(t, "author")
	alice := f.user(t, "alice")
	blog := f.blog(t, author, "post")

	var tops []*models.Comment
	for i := 0; i < 7; i++ {
		c, err := f.svc.AddComment(ctx, AddCommentInput{Actor: alice, Blog: blog, Text: "comment"})
		require.NoError(t, err)
		tops = append(tops, c)
	}
	var replies []*models.Comment
	for i := 0; i < 3; i++ {
		r, err := f.svc.AddComment(ctx, AddCommentInput{Actor: author, Blog: blog, Text: "reply", ReplyingTo: &tops[0].ID})
		require.NoError(t, err)
		replies = append(replies, r)
	}

	first, err := f.svc.ListBlogComments(ctx, blog, 0)
	require.NoError(t, err)
	require.Len(t, first, CommentPageSize)
	assert.Equal(t, tops[6].ID, first[0].ID)
	assert.Equal(t, "alice", first[0].CommentedBy.PersonalInfo.Username)

	rest, err := f.svc.ListBlogComments(ctx, blog, CommentPageSize)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, tops[0].ID, rest[1].ID)

	got, err := f.svc.ListReplies(ctx, tops[0].ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, replies[0].ID, got[0].ID)
	assert.Equal(t, "author", got[0].CommentedBy.PersonalInfo.Username)
}
