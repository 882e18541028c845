package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account stored in the users collection
type User struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	PersonalInfo PersonalInfo         `json:"personal_info" bson:"personal_info"`
	SocialLinks  SocialLinks          `json:"social_links" bson:"social_links"`
	AccountInfo  AccountInfo          `json:"account_info" bson:"account_info"`
	GoogleAuth   bool                 `json:"-" bson:"google_auth"`
	Blogs        []primitive.ObjectID `json:"-" bson:"blogs"`
	JoinedAt     time.Time            `json:"joinedAt" bson:"joinedAt"`
	UpdatedAt    time.Time            `json:"-" bson:"updatedAt"`
}

type PersonalInfo struct {
	Fullname   string `json:"fullname" bson:"fullname"`
	Email      string `json:"email" bson:"email"`
	Password   string `json:"-" bson:"password,omitempty"` // bcrypt hash, never set for google accounts
	Username   string `json:"username" bson:"username"`
	Bio        string `json:"bio" bson:"bio"`
	ProfileImg string `json:"profile_img" bson:"profile_img"`
}

type SocialLinks struct {
	Youtube   string `json:"youtube" bson:"youtube"`
	Instagram string `json:"instagram" bson:"instagram"`
	Facebook  string `json:"facebook" bson:"facebook"`
	Twitter   string `json:"twitter" bson:"twitter"`
	Github    string `json:"github" bson:"github"`
	Website   string `json:"website" bson:"website"`
}

// AsMap returns the links keyed by platform name.
func (s SocialLinks) AsMap() map[string]string {
	return map[string]string{
		"youtube":   s.Youtube,
		"instagram": s.Instagram,
		"facebook":  s.Facebook,
		"twitter":   s.Twitter,
		"github":    s.Github,
		"website":   s.Website,
	}
}

// AccountInfo holds denormalized per-user counters
type AccountInfo struct {
	TotalPosts int `json:"total_posts" bson:"total_posts"`
	TotalReads int `json:"total_reads" bson:"total_reads"`
}

// UserSummary is the public projection embedded in blogs, comments and notifications
type UserSummary struct {
	ID           primitive.ObjectID `json:"_id"`
	PersonalInfo SummaryInfo        `json:"personal_info"`
}

type SummaryInfo struct {
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

// ToSummary projects the user down to its public fields
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID: u.ID,
		PersonalInfo: SummaryInfo{
			Fullname:   u.PersonalInfo.Fullname,
			Username:   u.PersonalInfo.Username,
			ProfileImg: u.PersonalInfo.ProfileImg,
		},
	}
}

// AuthResponse is returned by signup, signin and google-auth
type AuthResponse struct {
	ProfileImg  string `json:"profile_img"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	AccessToken string `json:"access_token"`
}

type SignupRequest struct {
	Fullname string `json:"fullname" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleAuthRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,strongpassword"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
}

type UpdateProfileRequest struct {
	Username    string      `json:"username" validate:"required,min=3"`
	Bio         string      `json:"bio" validate:"max=150"`
	SocialLinks SocialLinks `json:"social_links"`
}

type UpdateProfileImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type SearchUsersRequest struct {
	Query string `json:"query"`
}

type GetProfileRequest struct {
	Username string `json:"username" validate:"required"`
}

// JwtCustomClaims are the access token claims; ID is the user ObjectID hex
type JwtCustomClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}
