package repositories

import (
	"context"
	"time"

	"github.com/anonto42/blogspace/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	LikeExists(ctx context.Context, user, blog primitive.ObjectID) (bool, error)
	DeleteLike(ctx context.Context, user, blog primitive.ObjectID) (bool, error)
	CountLikes(ctx context.Context, blog primitive.ObjectID) (int64, error)
	DeleteByComments(ctx context.Context, commentIDs []primitive.ObjectID) (int64, error)
	DeleteByBlog(ctx context.Context, blog primitive.ObjectID) (int64, error)
	List(ctx context.Context, q models.NotificationQuery) ([]models.Notification, error)
	Count(ctx context.Context, q models.NotificationQuery) (int64, error)
	HasUnseen(ctx context.Context, recipient primitive.ObjectID) (bool, error)
	MarkSeen(ctx context.Context, ids []primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	mongoBase
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a MongoDB-backed NotificationRepository
func NewMongoNotificationRepository(db *mongo.Database, timeout time.Duration) *MongoNotificationRepository {
	return &MongoNotificationRepository{mongoBase: newMongoBase(timeout), collection: db.Collection("notifications")}
}

// EnsureIndexes creates the feed index and the one-like-per-user-per-blog constraint
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "blog", Value: 1}},
			Options: options.Index().
				SetName("unique_like").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": models.NotificationTypeLike}),
		},
		{Keys: bson.D{{Key: "notification_for", Value: 1}, {Key: "type", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "comment", Value: 1}}},
		{Keys: bson.D{{Key: "blog", Value: 1}}},
	})
	return translate(err, "", "creating notification indexes")
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return translate(err, "", "notification")
}

func likeFilter(user, blog primitive.ObjectID) bson.M {
	return bson.M{"user": user, "type": models.NotificationTypeLike, "blog": blog}
}

func (r *MongoNotificationRepository) LikeExists(ctx context.Context, user, blog primitive.ObjectID) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, likeFilter(user, blog), options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "", "checking like")
	}
	return n > 0, nil
}

func (r *MongoNotificationRepository) DeleteLike(ctx context.Context, user, blog primitive.ObjectID) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, likeFilter(user, blog))
	if err != nil {
		return false, translate(err, "", "deleting like")
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoNotificationRepository) CountLikes(ctx context.Context, blog primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"blog": blog, "type": models.NotificationTypeLike})
	return n, translate(err, "", "counting likes")
}

func (r *MongoNotificationRepository) DeleteByComments(ctx context.Context, commentIDs []primitive.ObjectID) (int64, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}
	return r.deleteMany(ctx, bson.M{"comment": bson.M{"$in": commentIDs}})
}

func (r *MongoNotificationRepository) DeleteByBlog(ctx context.Context, blog primitive.ObjectID) (int64, error) {
	return r.deleteMany(ctx, bson.M{"blog": blog})
}

func (r *MongoNotificationRepository) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, translate(err, "", "deleting notifications")
	}
	return res.DeletedCount, nil
}

// feedFilter selects a recipient's notifications, never their own actions
func feedFilter(q models.NotificationQuery) bson.M {
	filter := bson.M{"notification_for": q.Recipient, "user": bson.M{"$ne": q.Recipient}}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	return filter
}

func (r *MongoNotificationRepository) List(ctx context.Context, q models.NotificationQuery) ([]models.Notification, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.Skip).
		SetLimit(q.Limit)
	cursor, err := r.collection.Find(ctx, feedFilter(q), opts)
	if err != nil {
		return nil, translate(err, "", "listing notifications")
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, translate(err, "", "decoding notifications")
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) Count(ctx context.Context, q models.NotificationQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, feedFilter(q))
	return n, translate(err, "", "counting notifications")
}

func (r *MongoNotificationRepository) HasUnseen(ctx context.Context, recipient primitive.ObjectID) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := feedFilter(models.NotificationQuery{Recipient: recipient})
	filter["seen"] = false
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "", "checking unseen notifications")
	}
	return n > 0, nil
}

func (r *MongoNotificationRepository) MarkSeen(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": bson.M{"seen": true}})
	return translate(err, "", "marking notifications seen")
}
