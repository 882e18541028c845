package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// DefaultStoreTimeout bounds a single store call when none is configured
const DefaultStoreTimeout = 5 * time.Second

// Transactor runs a group of repository calls as one unit of work.
// Repositories must be called with the context passed to fn.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTransactor uses a MongoDB session transaction when enabled.
// Standalone servers do not support transactions, so the runner falls back
// to running fn directly and leaves drift to the reconciler.
type MongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

// NewMongoTransactor creates a MongoTransactor
func NewMongoTransactor(client *mongo.Client, enabled bool) *MongoTransactor {
	return &MongoTransactor{client: client, enabled: enabled}
}

// WithTransaction runs fn inside a session transaction, retrying on transient errors
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || t.client == nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return apperr.Internal("starting session", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// mongoBase carries the per-call timeout shared by all Mongo repositories
type mongoBase struct {
	timeout time.Duration
}

func newMongoBase(timeout time.Duration) mongoBase {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return mongoBase{timeout: timeout}
}

// withTimeout derives the call context. Session values survive, so calls
// made inside a transaction stay inside it.
func (b mongoBase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// translate maps driver errors onto the apperr taxonomy
func translate(err error, notFoundMsg, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(notFoundMsg)
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("duplicate " + op)
	}
	return apperr.Internal(op, err)
}
