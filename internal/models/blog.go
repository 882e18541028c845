package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog is a post stored in the blogs collection
type Blog struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	BlogID      string               `json:"blog_id" bson:"blog_id"`
	Title       string               `json:"title" bson:"title"`
	Banner      string               `json:"banner" bson:"banner"`
	Des         string               `json:"des" bson:"des"`
	Content     BlogContent          `json:"content" bson:"content"`
	Tags        []string             `json:"tags" bson:"tags"`
	Author      primitive.ObjectID   `json:"author" bson:"author"`
	Activity    Activity             `json:"activity" bson:"activity"`
	Comments    []primitive.ObjectID `json:"-" bson:"comments"`
	Draft       bool                 `json:"draft" bson:"draft"`
	PublishedAt time.Time            `json:"publishedAt" bson:"publishedAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// BlogContent is the editor document; blocks are kept opaque
type BlogContent struct {
	Time    int64    `json:"time,omitempty" bson:"time,omitempty"`
	Blocks  []bson.M `json:"blocks" bson:"blocks"`
	Version string   `json:"version,omitempty" bson:"version,omitempty"`
}

// Activity holds the denormalized engagement counters of a blog
type Activity struct {
	TotalLikes          int `json:"total_likes" bson:"total_likes"`
	TotalComments       int `json:"total_comments" bson:"total_comments"`
	TotalReads          int `json:"total_reads" bson:"total_reads"`
	TotalParentComments int `json:"total_parent_comments" bson:"total_parent_comments"`
}

// ActivityDelta is an increment applied atomically to Activity
type ActivityDelta struct {
	Likes          int
	Comments       int
	Reads          int
	ParentComments int
}

// IsZero reports whether the delta changes nothing
func (d ActivityDelta) IsZero() bool {
	return d == ActivityDelta{}
}

// Engagement is the part of a blog the reconciler rewrites: its like and
// comment counters and the comment links
type Engagement struct {
	Activity Activity
	Comments []primitive.ObjectID
}

// BlogView is a blog with its author resolved
type BlogView struct {
	*Blog
	Author UserSummary `json:"author"`
}

// BlogQuery selects blogs for listing and counting
type BlogQuery struct {
	Tag          string
	Title        string // case-insensitive substring
	Author       *primitive.ObjectID
	Draft        *bool
	ExcludeSlug  string
	Skip         int64
	Limit        int64
	SortTrending bool
}

// BlogUpdate carries the editable fields of a blog
type BlogUpdate struct {
	Title   string
	Banner  string
	Des     string
	Content BlogContent
	Tags    []string
	Draft   bool
}

type CreateBlogRequest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"des"`
	Banner      string      `json:"banner"`
	Content     BlogContent `json:"content"`
	Tags        []string    `json:"tags"`
	Draft       bool        `json:"draft"`
}

type PageRequest struct {
	Page int `json:"page"`
}

type SearchBlogsRequest struct {
	Tag           string `json:"tag"`
	Query         string `json:"query"`
	Author        string `json:"author"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
	EliminateBlog string `json:"eliminate_blog"`
}

type GetBlogRequest struct {
	BlogID string `json:"blog_id" validate:"required"`
	Draft  bool   `json:"draft"`
	Mode   string `json:"mode"`
}

type UserBlogsRequest struct {
	Page            int    `json:"page"`
	Draft           bool   `json:"draft"`
	Query           string `json:"query"`
	DeletedDocCount int    `json:"deletedDocCount"`
}

type DeleteBlogRequest struct {
	BlogID string `json:"blog_id" validate:"required"`
}
