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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateProfileImage(ctx context.Context, id primitive.ObjectID, url string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio string, links models.SocialLinks) error
	AddBlog(ctx context.Context, userID, blogID primitive.ObjectID, postDelta int) error
	RemoveBlog(ctx context.Context, userID, blogID primitive.ObjectID, postDelta int) error
	IncrementTotalReads(ctx context.Context, userID primitive.ObjectID, n int) error
	IncrementTotalPosts(ctx context.Context, userID primitive.ObjectID, n int) error
	SetTotalPosts(ctx context.Context, userID primitive.ObjectID, n int) error
	ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	mongoBase
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database, timeout time.Duration) *MongoUserRepository {
	return &MongoUserRepository{mongoBase: newMongoBase(timeout), collection: db.Collection("users")}
}

// EnsureIndexes creates the unique email and username indexes
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "personal_info.email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "personal_info.username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return translate(err, "", "creating user indexes")
}

// CreateUser inserts a new user
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.JoinedAt = now
	user.UpdatedAt = now
	if user.Blogs == nil {
		user.Blogs = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err, "", "user")
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"personal_info.email": email})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"personal_info.username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err, "User not found", "finding user")
	}
	return &user, nil
}

// GetUsersByIDs retrieves every user whose ID is in ids
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "", "finding users")
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, translate(err, "", "decoding users")
	}
	return users, nil
}

// UsernameExists reports whether a username is taken
func (r *MongoUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"personal_info.username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "", "checking username")
	}
	return n > 0, nil
}

// SearchUsers finds users whose username contains query (case-insensitive)
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"personal_info.username": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, translate(err, "", "searching users")
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, translate(err, "", "decoding users")
	}
	return users, nil
}

// UpdatePassword replaces the password hash
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"personal_info.password": hash, "updatedAt": time.Now()}})
}

// UpdateProfileImage replaces the profile image URL
func (r *MongoUserRepository) UpdateProfileImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"personal_info.profile_img": url, "updatedAt": time.Now()}})
}

// UpdateProfile updates username, bio and social links
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio string, links models.SocialLinks) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"personal_info.username": username,
		"personal_info.bio":      bio,
		"social_links":           links,
		"updatedAt":              time.Now(),
	}})
}

// AddBlog links a blog to its author and bumps total_posts by postDelta
func (r *MongoUserRepository) AddBlog(ctx context.Context, userID, blogID primitive.ObjectID, postDelta int) error {
	return r.updateOne(ctx, userID, bson.M{
		"$push": bson.M{"blogs": blogID},
		"$inc":  bson.M{"account_info.total_posts": postDelta},
	})
}

// RemoveBlog unlinks a blog from its author and lowers total_posts by postDelta
func (r *MongoUserRepository) RemoveBlog(ctx context.Context, userID, blogID primitive.ObjectID, postDelta int) error {
	return r.updateOne(ctx, userID, bson.M{
		"$pull": bson.M{"blogs": blogID},
		"$inc":  bson.M{"account_info.total_posts": -postDelta},
	})
}

// IncrementTotalReads adds n to the author's read counter
func (r *MongoUserRepository) IncrementTotalReads(ctx context.Context, userID primitive.ObjectID, n int) error {
	return r.updateOne(ctx, userID, bson.M{"$inc": bson.M{"account_info.total_reads": n}})
}

// IncrementTotalPosts adds n to the author's published post counter
func (r *MongoUserRepository) IncrementTotalPosts(ctx context.Context, userID primitive.ObjectID, n int) error {
	return r.updateOne(ctx, userID, bson.M{"$inc": bson.M{"account_info.total_posts": n}})
}

// SetTotalPosts overwrites total_posts with a recounted value
func (r *MongoUserRepository) SetTotalPosts(ctx context.Context, userID primitive.ObjectID, n int) error {
	return r.updateOne(ctx, userID, bson.M{"$set": bson.M{"account_info.total_posts": n}})
}

// ListUserIDs returns the IDs of every user
func (r *MongoUserRepository) ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return listIDs(ctx, r.mongoBase, r.collection, "listing users")
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err, "User not found", "updating user")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// listIDs returns the _id of every document in a collection
func listIDs(ctx context.Context, base mongoBase, coll *mongo.Collection, op string) ([]primitive.ObjectID, error) {
	ctx, cancel := base.withTimeout(ctx)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, translate(err, "", op)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, translate(err, "", op)
		}
		ids = append(ids, doc.ID)
	}
	return ids, translate(cursor.Err(), "", op)
}
