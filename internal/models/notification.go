package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeReply   = "reply"

	// NotificationFilterAll disables the type filter
	NotificationFilterAll = "all"
)

// Notification records an engagement event. A like notification doubles as the like itself.
type Notification struct {
	ID               primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Type             string              `json:"type" bson:"type"`
	Blog             primitive.ObjectID  `json:"blog" bson:"blog"`
	NotificationFor  primitive.ObjectID  `json:"notification_for" bson:"notification_for"`
	User             primitive.ObjectID  `json:"user" bson:"user"`
	Comment          *primitive.ObjectID `json:"comment,omitempty" bson:"comment,omitempty"`
	RepliedOnComment *primitive.ObjectID `json:"replied_on_comment,omitempty" bson:"replied_on_comment,omitempty"`
	Seen             bool                `json:"seen" bson:"seen"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
}

// NotificationQuery selects a recipient's notifications. Self-notifications are always excluded.
type NotificationQuery struct {
	Recipient primitive.ObjectID
	Type      string // empty means every type
	Skip      int64
	Limit     int64
}

// NotificationView is a feed entry with its references resolved
type NotificationView struct {
	ID        primitive.ObjectID   `json:"_id"`
	Type      string               `json:"type"`
	Seen      bool                 `json:"seen"`
	CreatedAt time.Time            `json:"createdAt"`
	Blog      *NotificationBlog    `json:"blog,omitempty"`
	User      *UserSummary         `json:"user,omitempty"`
	Comment   *NotificationComment `json:"comment,omitempty"`
}

type NotificationBlog struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	BlogID string             `json:"blog_id"`
}

type NotificationComment struct {
	ID      primitive.ObjectID `json:"_id"`
	Comment string             `json:"comment"`
}

type LikeBlogRequest struct {
	ID            string `json:"_id" validate:"required,objectid"`
	IsLikedByUser bool   `json:"isLikedByUser"`
}

type IsLikedRequest struct {
	ID string `json:"_id" validate:"required,objectid"`
}

type NotificationsRequest struct {
	Page            int    `json:"page"`
	Filter          string `json:"filter"`
	DeletedDocCount int    `json:"deletedDocCount" validate:"min=0"`
}

type NotificationCountRequest struct {
	Filter string `json:"filter"`
}
