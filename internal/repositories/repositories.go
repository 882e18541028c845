package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Repositories holds all repositories backed by the shared connections
type Repositories struct {
	User         UserRepository
	Blog         BlogRepository
	Comment      CommentRepository
	Notification NotificationRepository
	ReconcileRun ReconcileRunRepository // nil without PostgreSQL

	indexers []indexer
	runs     *PostgresReconcileRunRepository
}

// New builds the Mongo repositories and, when pg is set, the audit store
func New(db *mongo.Database, pg *gorm.DB, timeout time.Duration) *Repositories {
	users := NewMongoUserRepository(db, timeout)
	blogs := NewMongoBlogRepository(db, timeout)
	comments := NewMongoCommentRepository(db, timeout)
	notifications := NewMongoNotificationRepository(db, timeout)

	r := &Repositories{
		User:         users,
		Blog:         blogs,
		Comment:      comments,
		Notification: notifications,
		indexers:     []indexer{users, blogs, comments, notifications},
	}
	if pg != nil {
		r.runs = NewPostgresReconcileRunRepository(pg)
		r.ReconcileRun = r.runs
	}
	return r
}

// Prepare creates the Mongo indexes and migrates the audit table
func (r *Repositories) Prepare(ctx context.Context) error {
	for _, ix := range r.indexers {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensuring indexes: %w", err)
		}
	}
	if r.runs != nil {
		if err := r.runs.Migrate(); err != nil {
			return fmt.Errorf("migrating reconcile runs: %w", err)
		}
	}
	return nil
}
