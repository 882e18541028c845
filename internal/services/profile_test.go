package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/mocks"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploader struct {
	got string
	err error
}

func (s *stubUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, _ := io.ReadAll(file)
	s.got = string(b)
	return "https://res.cloudinary.com/demo/" + filename, nil
}

func TestValidateSocialLinks(t *testing.T) {
	tests := []struct {
		name  string
		links models.SocialLinks
		valid bool
	}{
		{"empty", models.SocialLinks{}, true},
		{"matching hosts", models.SocialLinks{Github: "https://github.com/jane", Youtube: "https://www.youtube.com/@jane"}, true},
		{"any website", models.SocialLinks{Website: "https://jane.dev"}, true},
		{"wrong host", models.SocialLinks{Twitter: "https://example.com/jane"}, false},
		{"not a url", models.SocialLinks{Instagram: "instagram.com/jane"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSocialLinks(tt.links)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	users := mocks.NewMockUserRepository()
	up := &stubUploader{}
	svc := NewProfileService(users, up, zerolog.Nop())

	jane := &models.User{PersonalInfo: models.PersonalInfo{Fullname: "Jane", Email: "jane@example.com", Username: "jane"}}
	john := &models.User{PersonalInfo: models.PersonalInfo{Fullname: "John", Email: "john@example.com", Username: "john"}}
	require.NoError(t, users.CreateUser(ctx, jane))
	require.NoError(t, users.CreateUser(ctx, john))

	found, err := svc.SearchUsers(ctx, "JA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "jane", found[0].PersonalInfo.Username)

	profile, err := svc.GetProfile(ctx, "john")
	require.NoError(t, err)
	assert.Equal(t, john.ID, profile.ID)
	_, err = svc.GetProfile(ctx, "nobody")
	assert.True(t, apperr.IsNotFound(err))

	name, err := svc.UpdateProfile(ctx, jane.ID, models.UpdateProfileRequest{
		Username:    "jane_doe",
		Bio:         "writes about Go",
		SocialLinks: models.SocialLinks{Github: "https://github.com/jane"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", name)
	stored, err := users.GetUserByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "writes about Go", stored.PersonalInfo.Bio)

	_, err = svc.UpdateProfile(ctx, jane.ID, models.UpdateProfileRequest{Username: "john"})
	assert.Equal(t, "Username is already taken", apperr.MessageOf(err))

	_, err = svc.UpdateProfile(ctx, jane.ID, models.UpdateProfileRequest{Username: "jd"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	img, err := svc.UpdateProfileImage(ctx, john.ID, "https://img.example.com/john.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/john.png", img)

	url, err := svc.UploadImage(ctx, strings.NewReader("png-bytes"), "banner.png")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/banner.png", url)
	assert.Equal(t, "png-bytes", up.got)

	up.err = errors.New("quota exceeded")
	_, err = svc.UploadImage(ctx, strings.NewReader("x"), "x.png")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	_, err = NewProfileService(users, nil, zerolog.Nop()).UploadImage(ctx, strings.NewReader("x"), "x.png")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}
