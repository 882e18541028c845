package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *models.Blog) error
	GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	UpdateBlog(ctx context.Context, slug string, author primitive.ObjectID, update models.BlogUpdate) error
	DeleteBlog(ctx context.Context, slug string, author primitive.ObjectID) (*models.Blog, error)
	ListBlogs(ctx context.Context, q models.BlogQuery) ([]models.Blog, error)
	CountBlogs(ctx context.Context, q models.BlogQuery) (int64, error)
	IncrementReads(ctx context.Context, slug string, n int) (*models.Blog, error)
	UpdateActivity(ctx context.Context, id primitive.ObjectID, delta models.ActivityDelta) error
	AddComment(ctx context.Context, id, commentID primitive.ObjectID, delta models.ActivityDelta) error
	RemoveComments(ctx context.Context, id primitive.ObjectID, commentIDs []primitive.ObjectID, delta models.ActivityDelta) error
	SetEngagement(ctx context.Context, id primitive.ObjectID, prev, next models.Engagement) (bool, error)
	ListBlogIDs(ctx context.Context) ([]primitive.ObjectID, error)
	CountPublishedByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
}

// MongoBlogRepository implements BlogRepository for MongoDB
type MongoBlogRepository struct {
	mongoBase
	collection *mongo.Collection
}

// NewMongoBlogRepository creates a new MongoBlogRepository
func NewMongoBlogRepository(db *mongo.Database, timeout time.Duration) *MongoBlogRepository {
	return &MongoBlogRepository{mongoBase: newMongoBase(timeout), collection: db.Collection("blogs")}
}

// EnsureIndexes creates the slug, listing and author indexes
func (r *MongoBlogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "draft", Value: 1}, {Key: "publishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "draft", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	return translate(err, "", "creating blog indexes")
}

// CreateBlog inserts a new blog
func (r *MongoBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	blog.ID = primitive.NewObjectID()
	now := time.Now()
	blog.PublishedAt = now
	blog.UpdatedAt = now
	if blog.Comments == nil {
		blog.Comments = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, blog)
	return translate(err, "", "blog")
}

// GetBlogByID retrieves a blog by its ObjectID
func (r *MongoBlogRepository) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetBlogBySlug retrieves a blog by its blog_id slug
func (r *MongoBlogRepository) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"blog_id": slug})
}

func (r *MongoBlogRepository) findOne(ctx context.Context, filter bson.M) (*models.Blog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var blog models.Blog
	if err := r.collection.FindOne(ctx, filter).Decode(&blog); err != nil {
		return nil, translate(err, "Blog not found", "finding blog")
	}
	return &blog, nil
}

// UpdateBlog edits a blog owned by author
func (r *MongoBlogRepository) UpdateBlog(ctx context.Context, slug string, author primitive.ObjectID, update models.BlogUpdate) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"blog_id": slug, "author": author}, bson.M{"$set": bson.M{
		"title":     update.Title,
		"banner":    update.Banner,
		"des":       update.Des,
		"content":   update.Content,
		"tags":      update.Tags,
		"draft":     update.Draft,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return translate(err, "Blog not found", "updating blog")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Blog not found")
	}
	return nil
}

// DeleteBlog removes a blog owned by author and returns it
func (r *MongoBlogRepository) DeleteBlog(ctx context.Context, slug string, author primitive.ObjectID) (*models.Blog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var blog models.Blog
	err := r.collection.FindOneAndDelete(ctx, bson.M{"blog_id": slug, "author": author}).Decode(&blog)
	if err != nil {
		return nil, translate(err, "Blog not found", "deleting blog")
	}
	return &blog, nil
}

func blogFilter(q models.BlogQuery) bson.M {
	filter := bson.M{}
	if q.Draft != nil {
		filter["draft"] = *q.Draft
	}
	if q.Tag != "" {
		filter["tags"] = q.Tag
	}
	if q.Title != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Title), Options: "i"}
	}
	if q.Author != nil {
		filter["author"] = *q.Author
	}
	if q.ExcludeSlug != "" {
		filter["blog_id"] = bson.M{"$ne": q.ExcludeSlug}
	}
	return filter
}

// ListBlogs returns blogs matching q, newest first or by trending order
func (r *MongoBlogRepository) ListBlogs(ctx context.Context, q models.BlogQuery) ([]models.Blog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sort := bson.D{{Key: "publishedAt", Value: -1}}
	if q.SortTrending {
		sort = bson.D{
			{Key: "activity.total_reads", Value: -1},
			{Key: "activity.total_likes", Value: -1},
			{Key: "publishedAt", Value: -1},
		}
	}
	findOptions := options.Find().SetSort(sort).SetSkip(q.Skip)
	if q.Limit > 0 {
		findOptions.SetLimit(q.Limit)
	}

	cursor, err := r.collection.Find(ctx, blogFilter(q), findOptions)
	if err != nil {
		return nil, translate(err, "", "listing blogs")
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, translate(err, "", "decoding blogs")
	}
	return blogs, nil
}

// CountBlogs counts blogs matching q
func (r *MongoBlogRepository) CountBlogs(ctx context.Context, q models.BlogQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, blogFilter(q))
	return n, translate(err, "", "counting blogs")
}

// IncrementReads bumps total_reads and returns the updated blog
func (r *MongoBlogRepository) IncrementReads(ctx context.Context, slug string, n int) (*models.Blog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var blog models.Blog
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"blog_id": slug},
		bson.M{"$inc": bson.M{"activity.total_reads": n}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&blog)
	if err != nil {
		return nil, translate(err, "Blog not found", "reading blog")
	}
	return &blog, nil
}

func activityInc(delta models.ActivityDelta) bson.M {
	inc := bson.M{}
	if delta.Likes != 0 {
		inc["activity.total_likes"] = delta.Likes
	}
	if delta.Comments != 0 {
		inc["activity.total_comments"] = delta.Comments
	}
	if delta.Reads != 0 {
		inc["activity.total_reads"] = delta.Reads
	}
	if delta.ParentComments != 0 {
		inc["activity.total_parent_comments"] = delta.ParentComments
	}
	return inc
}

// UpdateActivity applies delta to the counters in a single atomic update
func (r *MongoBlogRepository) UpdateActivity(ctx context.Context, id primitive.ObjectID, delta models.ActivityDelta) error {
	if delta.IsZero() {
		return nil
	}
	return r.updateOne(ctx, id, bson.M{"$inc": activityInc(delta)})
}

// AddComment links a comment to the blog and applies delta
func (r *MongoBlogRepository) AddComment(ctx context.Context, id, commentID primitive.ObjectID, delta models.ActivityDelta) error {
	update := bson.M{"$push": bson.M{"comments": commentID}}
	if inc := activityInc(delta); len(inc) > 0 {
		update["$inc"] = inc
	}
	return r.updateOne(ctx, id, update)
}

// RemoveComments unlinks comments from the blog and applies delta
func (r *MongoBlogRepository) RemoveComments(ctx context.Context, id primitive.ObjectID, commentIDs []primitive.ObjectID, delta models.ActivityDelta) error {
	update := bson.M{"$pull": bson.M{"comments": bson.M{"$in": commentIDs}}}
	if inc := activityInc(delta); len(inc) > 0 {
		update["$inc"] = inc
	}
	return r.updateOne(ctx, id, update)
}

// SetEngagement overwrites the like and comment counters and the comment list
// with recounted values, but only while the blog still holds prev. It reports
// false when any of them changed since prev was read.
// total_reads is left untouched because nothing records individual reads.
func (r *MongoBlogRepository) SetEngagement(ctx context.Context, id primitive.ObjectID, prev, next models.Engagement) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	comments := next.Comments
	if comments == nil {
		comments = []primitive.ObjectID{}
	}
	filter := bson.M{
		"_id":                            id,
		"activity.total_likes":           counterMatch(prev.Activity.TotalLikes),
		"activity.total_comments":        counterMatch(prev.Activity.TotalComments),
		"activity.total_parent_comments": counterMatch(prev.Activity.TotalParentComments),
	}
	if len(prev.Comments) == 0 {
		filter["comments"] = bson.M{"$in": bson.A{nil, bson.A{}}}
	} else {
		filter["comments"] = prev.Comments
	}

	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"activity.total_likes":           next.Activity.TotalLikes,
		"activity.total_comments":        next.Activity.TotalComments,
		"activity.total_parent_comments": next.Activity.TotalParentComments,
		"comments":                       comments,
	}})
	if err != nil {
		return false, translate(err, "Blog not found", "resetting blog engagement")
	}
	return res.MatchedCount == 1, nil
}

// counterMatch matches a stored counter; a zero also matches a missing field
func counterMatch(n int) interface{} {
	if n == 0 {
		return bson.M{"$in": bson.A{0, nil}}
	}
	return n
}

// ListBlogIDs returns the IDs of every blog
func (r *MongoBlogRepository) ListBlogIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return listIDs(ctx, r.mongoBase, r.collection, "listing blogs")
}

// CountPublishedByAuthor counts an author's non-draft blogs
func (r *MongoBlogRepository) CountPublishedByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	draft := false
	return r.CountBlogs(ctx, models.BlogQuery{Author: &author, Draft: &draft})
}

func (r *MongoBlogRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err, "Blog not found", "updating blog")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Blog not found")
	}
	return nil
}
