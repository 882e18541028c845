package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anonto42/blogspace/backend/internal/mocks"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stores struct {
	blogs  *mocks.MockBlogRepository
	users  *mocks.MockUserRepository
	runs   *mocks.MockReconcileRunRepository
	closed bool
}

func newStores(t *testing.T) (*stores, *RootOptions) {
	t.Helper()
	s := &stores{
		blogs: mocks.NewMockBlogRepository(),
		users: mocks.NewMockUserRepository(),
		runs:  &mocks.MockReconcileRunRepository{},
	}
	comments := mocks.NewMockCommentRepository()
	notifications := mocks.NewMockNotificationRepository()

	opts := &RootOptions{
		Open: func(ctx context.Context, _ *RootOptions) (*services.Reconciler, func(), error) {
			r := services.NewReconciler(s.blogs, comments, notifications, s.users, s.runs, &mocks.Transactor{}, zerolog.Nop())
			return r, func() { s.closed = true }, nil
		},
	}
	return s, opts
}

func (s *stores) seed(t *testing.T) primitive.ObjectID {
	t.Helper()
	ctx := context.Background()
	author := &models.User{PersonalInfo: models.PersonalInfo{Email: "a@example.com", Username: "author"}}
	require.NoError(t, s.users.CreateUser(ctx, author))
	blog := &models.Blog{BlogID: "drifted-post", Title: "Drifted", Author: author.ID}
	require.NoError(t, s.blogs.CreateBlog(ctx, blog))
	require.NoError(t, s.blogs.UpdateActivity(ctx, blog.ID, models.ActivityDelta{Likes: 3, Comments: 2}))
	return blog.ID
}

func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "blogctl", cmd.Use)
	for _, name := range []string{"reconcile", "reconcile-history"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	blogFlag := cmd.Commands()[0].Flags().Lookup("blog")
	require.NotNil(t, blogFlag)
}

func TestInvalidFormat(t *testing.T) {
	_, opts := newStores(t)
	_, err := execute(t, opts, "reconcile", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestReconcileAllText(t *testing.T) {
	s, opts := newStores(t)
	id := s.seed(t)

	out, err := execute(t, opts, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "scope: all")
	assert.Contains(t, out, "blogs: 1 scanned, 1 drifted")
	assert.Contains(t, out, "users: 1 scanned, 1 drifted")
	assert.True(t, s.closed)

	blog, err := s.blogs.GetBlogByID(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, blog.Activity.TotalLikes)
	assert.Len(t, s.runs.Runs, 1)
}

func TestReconcileBlogJSON(t *testing.T) {
	s, opts := newStores(t)
	s.seed(t)

	out, err := execute(t, opts, "reconcile", "--blog", "drifted-post", "--format", "json")
	require.NoError(t, err)

	var res reconcileResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "drifted-post", res.Run.Scope)
	require.NotNil(t, res.Drift)
	assert.Equal(t, 3, res.Drift.Before.TotalLikes)
	assert.Equal(t, 0, res.Drift.After.TotalLikes)

	_, err = execute(t, opts, "reconcile", "--blog", "missing")
	assert.Error(t, err)
}

func TestReconcileReportsErrors(t *testing.T) {
	s, opts := newStores(t)
	s.seed(t)
	s.blogs.ActivityErr = errors.New("write conflict")

	out, err := execute(t, opts, "reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error(s)")
	assert.Contains(t, out, "errors:")
}

func TestHistory(t *testing.T) {
	s, opts := newStores(t)

	out, err := execute(t, opts, "reconcile-history")
	require.NoError(t, err)
	assert.Contains(t, out, "no recorded runs")

	s.seed(t)
	_, err = execute(t, opts, "reconcile")
	require.NoError(t, err)
	_, err = execute(t, opts, "reconcile", "--blog", "drifted-post")
	require.NoError(t, err)

	out, err = execute(t, opts, "reconcile-history", "--format", "json", "-n", "1")
	require.NoError(t, err)
	var runs []models.ReconcileRun
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "drifted-post", runs[0].Scope)

	out, err = execute(t, opts, "reconcile-history")
	require.NoError(t, err)
	assert.Contains(t, out, "SCOPE")
	assert.Contains(t, out, "all")
}

func TestOpenFailure(t *testing.T) {
	opts := &RootOptions{Open: func(ctx context.Context, _ *RootOptions) (*services.Reconciler, func(), error) {
		return nil, nil, errors.New("MONGO_URI is required")
	}}
	_, err := execute(t, opts, "reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening stores")
}
