package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a comment or reply on a blog
type Comment struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	BlogID      primitive.ObjectID   `json:"blog_id" bson:"blog_id"`
	BlogAuthor  primitive.ObjectID   `json:"blog_author" bson:"blog_author"`
	Comment     string               `json:"comment" bson:"comment"`
	Children    []primitive.ObjectID `json:"children" bson:"children"`
	CommentedBy primitive.ObjectID   `json:"commented_by" bson:"commented_by"`
	IsReply     bool                 `json:"isReply" bson:"isReply"`
	Parent      *primitive.ObjectID  `json:"parent,omitempty" bson:"parent,omitempty"`
	CommentedAt time.Time            `json:"commentedAt" bson:"commentedAt"`
}

// CommentView is a comment with its author resolved
type CommentView struct {
	*Comment
	CommentedBy UserSummary `json:"commented_by"`
}

// AddCommentRequest defines the request body for commenting or replying
type AddCommentRequest struct {
	ID         string `json:"_id" validate:"required,objectid"`
	Comment    string `json:"comment"`
	BlogAuthor string `json:"blog_author" validate:"omitempty,objectid"`
	ReplyingTo string `json:"replying_to" validate:"omitempty,objectid"`
}

// AddCommentResponse mirrors what the client renders right after posting
type AddCommentResponse struct {
	Comment     string               `json:"comment"`
	CommentedAt time.Time            `json:"commentedAt"`
	ID          primitive.ObjectID   `json:"_id"`
	UserID      primitive.ObjectID   `json:"user_id"`
	Children    []primitive.ObjectID `json:"children"`
}

type GetBlogCommentsRequest struct {
	BlogID string `json:"blog_id" validate:"required,objectid"`
	Skip   int64  `json:"skip" validate:"min=0"`
}

type GetRepliesRequest struct {
	ID   string `json:"_id" validate:"required,objectid"`
	Skip int64  `json:"skip" validate:"min=0"`
}

type DeleteCommentRequest struct {
	ID string `json:"_id" validate:"required,objectid"`
}
