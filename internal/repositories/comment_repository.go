package repositories

import (
	"context"
	"time"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	RemoveChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	ListByBlog(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	ListIDsByBlog(ctx context.Context, blogID primitive.ObjectID) ([]primitive.ObjectID, error)
	CountByBlog(ctx context.Context, blogID primitive.ObjectID, topLevelOnly bool) (int64, error)
	DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	DeleteByBlog(ctx context.Context, blogID primitive.ObjectID) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	mongoBase
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database, timeout time.Duration) *MongoCommentRepository {
	return &MongoCommentRepository{mongoBase: newMongoBase(timeout), collection: db.Collection("comments")}
}

// EnsureIndexes creates the listing indexes
func (r *MongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog_id", Value: 1}, {Key: "isReply", Value: 1}, {Key: "commentedAt", Value: -1}}},
		{Keys: bson.D{{Key: "parent", Value: 1}, {Key: "commentedAt", Value: 1}}},
	})
	return translate(err, "", "creating comment indexes")
}

// CreateComment inserts a new comment
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	comment.ID = primitive.NewObjectID()
	comment.CommentedAt = time.Now()
	if comment.Children == nil {
		comment.Children = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return translate(err, "", "comment")
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err, "Comment not found", "finding comment")
	}
	return &comment, nil
}

// GetCommentsByIDs retrieves every comment whose ID is in ids
func (r *MongoCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// AddChild appends a reply to its parent's children
func (r *MongoCommentRepository) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	return r.updateOne(ctx, parentID, bson.M{"$push": bson.M{"children": childID}})
}

// RemoveChild removes a reply from its parent's children
func (r *MongoCommentRepository) RemoveChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	return r.updateOne(ctx, parentID, bson.M{"$pull": bson.M{"children": childID}})
}

// ListByBlog returns top-level comments of a blog, newest first
func (r *MongoCommentRepository) ListByBlog(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "commentedAt", Value: -1}}).SetSkip(skip).SetLimit(limit)
	return r.find(ctx, bson.M{"blog_id": blogID, "isReply": false}, opts)
}

// ListReplies returns the replies of a comment, oldest first
func (r *MongoCommentRepository) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "commentedAt", Value: 1}}).SetSkip(skip).SetLimit(limit)
	return r.find(ctx, bson.M{"parent": parentID}, opts)
}

// ListIDsByBlog returns the IDs of every comment on a blog
func (r *MongoCommentRepository) ListIDsByBlog(ctx context.Context, blogID primitive.ObjectID) ([]primitive.ObjectID, error) {
	comments, err := r.find(ctx, bson.M{"blog_id": blogID},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "commentedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	return ids, nil
}

// CountByBlog counts comments on a blog, optionally only top-level ones
func (r *MongoCommentRepository) CountByBlog(ctx context.Context, blogID primitive.ObjectID, topLevelOnly bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"blog_id": blogID}
	if topLevelOnly {
		filter["isReply"] = false
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	return n, translate(err, "", "counting comments")
}

// DeleteComments removes the given comments and reports how many existed
func (r *MongoCommentRepository) DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, translate(err, "", "deleting comments")
	}
	return res.DeletedCount, nil
}

// DeleteByBlog removes every comment on a blog
func (r *MongoCommentRepository) DeleteByBlog(ctx context.Context, blogID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"blog_id": blogID})
	if err != nil {
		return 0, translate(err, "", "deleting blog comments")
	}
	return res.DeletedCount, nil
}

func (r *MongoCommentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "", "finding comments")
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, translate(err, "", "decoding comments")
	}
	return comments, nil
}

func (r *MongoCommentRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err, "Comment not found", "updating comment")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Comment not found")
	}
	return nil
}
