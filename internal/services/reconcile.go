package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReconcileScopeAll marks a run that covered every blog and user
const ReconcileScopeAll = "all"

// maxReconcileAttempts bounds how often a blog is recounted when engagement
// writes keep landing between the recount and the rewrite
const maxReconcileAttempts = 5

// Reconciler recomputes denormalized counters from their source records
type Reconciler struct {
	blogs         repositories.BlogRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	runs          repositories.ReconcileRunRepository // nil when no audit store is configured
	tx            repositories.Transactor
	log           zerolog.Logger
}

// NewReconciler creates a new Reconciler. runs may be nil.
func NewReconciler(
	blogs repositories.BlogRepository,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	runs repositories.ReconcileRunRepository,
	tx repositories.Transactor,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		blogs:         blogs,
		comments:      comments,
		notifications: notifications,
		users:         users,
		runs:          runs,
		tx:            tx,
		log:           log.With().Str("component", "reconciler").Logger(),
	}
}

// ReconcileBlog recounts likes and comments of one blog and rewrites its counters.
// The rewrite only applies while the counters still hold the values read
// before the recount; a like or comment landing in between triggers a recount.
func (r *Reconciler) ReconcileBlog(ctx context.Context, id primitive.ObjectID) (models.BlogDrift, error) {
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		var drift models.BlogDrift
		applied := false
		err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
			var err error
			drift, applied, err = r.recountBlog(ctx, id)
			return err
		})
		if err != nil {
			return drift, err
		}
		if applied {
			if drift.Drifted() {
				r.log.Info().
					Str("blog", drift.BlogID).
					Interface("before", drift.Before).
					Interface("after", drift.After).
					Msg("blog counters corrected")
			}
			return drift, nil
		}
		r.log.Debug().Str("blog", drift.BlogID).Int("attempt", attempt).Msg("blog changed during recount")
	}
	return models.BlogDrift{}, apperr.Conflict("blog kept changing during reconciliation")
}

// recountBlog reports applied=false when the blog changed after it was read
func (r *Reconciler) recountBlog(ctx context.Context, id primitive.ObjectID) (models.BlogDrift, bool, error) {
	blog, err := r.blogs.GetBlogByID(ctx, id)
	if err != nil {
		return models.BlogDrift{}, false, err
	}

	likes, err := r.notifications.CountLikes(ctx, id)
	if err != nil {
		return models.BlogDrift{}, false, err
	}
	commentIDs, err := r.comments.ListIDsByBlog(ctx, id)
	if err != nil {
		return models.BlogDrift{}, false, err
	}
	parents, err := r.comments.CountByBlog(ctx, id, true)
	if err != nil {
		return models.BlogDrift{}, false, err
	}

	after := blog.Activity
	after.TotalLikes = int(likes)
	after.TotalComments = len(commentIDs)
	after.TotalParentComments = int(parents)
	drift := models.BlogDrift{BlogID: blog.BlogID, Before: blog.Activity, After: after}

	if !drift.Drifted() && sameIDs(blog.Comments, commentIDs) {
		return drift, true, nil
	}
	applied, err := r.blogs.SetEngagement(ctx, id,
		models.Engagement{Activity: blog.Activity, Comments: blog.Comments},
		models.Engagement{Activity: after, Comments: commentIDs},
	)
	return drift, applied, err
}

// ReconcileSlug reconciles a single blog addressed by its slug and records the run
func (r *Reconciler) ReconcileSlug(ctx context.Context, slug string) (*models.ReconcileRun, models.BlogDrift, error) {
	run := &models.ReconcileRun{Scope: slug, StartedAt: time.Now()}

	blog, err := r.blogs.GetBlogBySlug(ctx, slug)
	if err != nil {
		return nil, models.BlogDrift{}, err
	}

	drift, err := r.ReconcileBlog(ctx, blog.ID)
	run.BlogsScanned = 1
	if err != nil {
		run.Errors = 1
		run.ErrorSummary = err.Error()
	} else if drift.Drifted() {
		run.BlogsDrifted = 1
	}
	r.finish(ctx, run)
	return run, drift, err
}

// ReconcileAll reconciles every blog and every author's post count. Failures
// on individual records are collected and the pass continues.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*models.ReconcileRun, error) {
	run := &models.ReconcileRun{Scope: ReconcileScopeAll, StartedAt: time.Now()}
	var result *multierror.Error

	blogIDs, err := r.blogs.ListBlogIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range blogIDs {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		run.BlogsScanned++
		drift, err := r.ReconcileBlog(ctx, id)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("blog %s: %w", id.Hex(), err))
			continue
		}
		if drift.Drifted() {
			run.BlogsDrifted++
		}
	}

	userIDs, err := r.users.ListUserIDs(ctx)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("listing users: %w", err))
	}
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		run.UsersScanned++
		drifted, err := r.reconcileUser(ctx, id)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("user %s: %w", id.Hex(), err))
			continue
		}
		if drifted {
			run.UsersDrifted++
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		run.Errors = result.Len()
		run.ErrorSummary = err.Error()
	}
	r.finish(ctx, run)

	r.log.Info().
		Int("blogs_scanned", run.BlogsScanned).
		Int("blogs_drifted", run.BlogsDrifted).
		Int("users_scanned", run.UsersScanned).
		Int("users_drifted", run.UsersDrifted).
		Int("errors", run.Errors).
		Int64("duration_ms", run.DurationMilli).
		Msg("reconciliation finished")
	return run, result.ErrorOrNil()
}

func (r *Reconciler) reconcileUser(ctx context.Context, id primitive.ObjectID) (bool, error) {
	user, err := r.users.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}
	published, err := r.blogs.CountPublishedByAuthor(ctx, id)
	if err != nil {
		return false, err
	}
	if int(published) == user.AccountInfo.TotalPosts {
		return false, nil
	}
	if err := r.users.SetTotalPosts(ctx, id, int(published)); err != nil {
		return false, err
	}
	r.log.Info().
		Str("user", user.PersonalInfo.Username).
		Int("before", user.AccountInfo.TotalPosts).
		Int("after", int(published)).
		Msg("total_posts corrected")
	return true, nil
}

func (r *Reconciler) finish(ctx context.Context, run *models.ReconcileRun) {
	run.FinishedAt = time.Now()
	run.DurationMilli = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	if r.runs == nil {
		return
	}
	if err := r.runs.CreateRun(ctx, run); err != nil {
		r.log.Warn().Err(err).Str("scope", run.Scope).Msg("failed to record reconciliation run")
	}
}

// History returns the latest recorded runs, newest first
func (r *Reconciler) History(ctx context.Context, limit int) ([]models.ReconcileRun, error) {
	if r.runs == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	return r.runs.LatestRuns(ctx, limit)
}

// Start runs ReconcileAll every interval until ctx is cancelled. The returned
// channel is closed once the loop has exited.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.ReconcileAll(ctx); err != nil {
					r.log.Error().Err(err).Msg("scheduled reconciliation had errors")
				}
			}
		}
	}()
	return done
}

func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[primitive.ObjectID]int, len(a))
	for _, id := range a {
		set[id]++
	}
	for _, id := range b {
		if set[id] == 0 {
			return false
		}
		set[id]--
	}
	return true
}
