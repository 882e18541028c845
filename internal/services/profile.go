package services

import (
	"context"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/anonto42/blogspace/backend/pkg/media"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSearchLimit caps the number of users returned by a search
const UserSearchLimit = 50

// ProfileService serves public profiles and profile edits
type ProfileService struct {
	users    repositories.UserRepository
	uploader media.Uploader // nil disables image upload
	log      zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(users repositories.UserRepository, uploader media.Uploader, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:    users,
		uploader: uploader,
		log:      log.With().Str("component", "profile").Logger(),
	}
}

// SearchUsers finds users by username substring
func (s *ProfileService) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	users, err := s.users.SearchUsers(ctx, query, UserSearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, len(users))
	for i := range users {
		out[i] = users[i].ToSummary()
	}
	return out, nil
}

// GetProfile returns a user's public profile
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// validateSocialLinks requires each non-empty link to be a URL on its
// platform's domain; the website link may point anywhere.
func validateSocialLinks(links models.SocialLinks) error {
	all := links.AsMap()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, platform := range keys {
		link := all[platform]
		if link == "" {
			continue
		}
		u, err := url.Parse(link)
		if err != nil || u.Hostname() == "" {
			return apperr.Validation("You must provide a valid url")
		}
		if platform != "website" && !strings.Contains(u.Hostname(), platform+".com") {
			return apperr.Validation(platform + " link is invalid. You must enter a full link")
		}
	}
	return nil
}

// UpdateProfile changes username, bio and social links and returns the new username
func (s *ProfileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req models.UpdateProfileRequest) (string, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 {
		return "", apperr.Validation("Username should be at least 3 letters long")
	}
	if err := validateSocialLinks(req.SocialLinks); err != nil {
		return "", err
	}

	err := s.users.UpdateProfile(ctx, userID, username, req.Bio, req.SocialLinks)
	if apperr.IsConflict(err) {
		return "", apperr.Conflict("Username is already taken")
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

// UpdateProfileImage sets the profile image URL
func (s *ProfileService) UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, imageURL string) (string, error) {
	if err := s.users.UpdateProfileImage(ctx, userID, imageURL); err != nil {
		return "", err
	}
	return imageURL, nil
}

// UploadImage stores an image with the media uploader and returns its URL
func (s *ProfileService) UploadImage(ctx context.Context, file io.Reader, filename string) (string, error) {
	if s.uploader == nil {
		return "", apperr.BadRequest("Image upload is not configured")
	}
	imageURL, err := s.uploader.Upload(ctx, file, filename)
	if err != nil {
		return "", apperr.Internal("uploading image", err)
	}
	s.log.Debug().Str("file", filename).Str("url", imageURL).Msg("image uploaded")
	return imageURL, nil
}
