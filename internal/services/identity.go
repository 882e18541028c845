package services

import (
	"context"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenVerifier verifies federated ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// IdentityService authenticates users and issues access tokens
type IdentityService struct {
	users    repositories.UserRepository
	verifier TokenVerifier // nil disables google-auth
	secret   []byte
	ttl      time.Duration
	log      zerolog.Logger
}

// NewIdentityService creates a new IdentityService. A zero ttl issues tokens without expiry.
func NewIdentityService(users repositories.UserRepository, verifier TokenVerifier, secret string, ttl time.Duration, log zerolog.Logger) *IdentityService {
	return &IdentityService{
		users:    users,
		verifier: verifier,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log.With().Str("component", "identity").Logger(),
	}
}

// Signup creates a password account
func (s *IdentityService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hashing password", err)
	}
	username, err := s.GenerateUsername(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	user := &models.User{PersonalInfo: models.PersonalInfo{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: string(hash),
		Username: username,
	}}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user", username).Msg("user signed up")
	return s.authResponse(user)
}

func (s *IdentityService) createUser(ctx context.Context, user *models.User) error {
	err := s.users.CreateUser(ctx, user)
	if !apperr.IsConflict(err) {
		return err
	}
	if _, lookupErr := s.users.GetUserByEmail(ctx, user.PersonalInfo.Email); lookupErr == nil {
		return apperr.Conflict("Email already exists")
	}
	return apperr.Conflict("Username is already taken, please try again")
}

// Signin authenticates a password account
func (s *IdentityService) Signin(ctx context.Context, req models.SigninRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if apperr.IsNotFound(err) {
		return nil, apperr.Forbidden("Email not found")
	}
	if err != nil {
		return nil, err
	}
	if user.GoogleAuth {
		return nil, apperr.Forbidden("Account was created with google. Try continue with google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PersonalInfo.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Forbidden("Enter the correct password")
	}
	return s.authResponse(user)
}

// GoogleAuth signs in, or signs up, the owner of a verified Firebase ID token
func (s *IdentityService) GoogleAuth(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.verifier == nil {
		return nil, apperr.BadRequest("Google sign-in is not configured")
	}
	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("google token rejected")
		return nil, apperr.Unauthorized("Failed to authenticate you with google. Try with some other google account")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, apperr.Unauthorized("Google account has no email")
	}
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	picture = strings.Replace(picture, "s96-c", "s384-c", 1)

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.GoogleAuth {
			return nil, apperr.Forbidden("This email was signed up without google. Log in with password to access the account")
		}
	case apperr.IsNotFound(err):
		username, err := s.GenerateUsername(ctx, email)
		if err != nil {
			return nil, err
		}
		user = &models.User{
			PersonalInfo: models.PersonalInfo{Fullname: name, Email: email, Username: username, ProfileImg: picture},
			GoogleAuth:   true,
		}
		if err := s.createUser(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info().Str("user", username).Msg("user signed up with google")
	default:
		return nil, err
	}
	return s.authResponse(user)
}

// ChangePassword replaces the password of a password account
func (s *IdentityService) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.GoogleAuth {
		return apperr.Forbidden("You can't change account password because you logged in with google account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PersonalInfo.Password), []byte(current)); err != nil {
		return apperr.Forbidden("Incorrect current password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("hashing password", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// GenerateUsername derives a username from the email's local part,
// adding a short random suffix when it is already taken.
func (s *IdentityService) GenerateUsername(ctx context.Context, email string) (string, error) {
	username := strings.SplitN(email, "@", 2)[0]
	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		username += strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	}
	return username, nil
}

// IssueToken signs an access token for the user
func (s *IdentityService) IssueToken(userID primitive.ObjectID) (string, error) {
	claims := &models.JwtCustomClaims{
		ID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("signing token", err)
	}
	return signed, nil
}

// ParseToken validates an access token and returns the user it was issued to
func (s *IdentityService) ParseToken(tokenString string) (primitive.ObjectID, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, apperr.Forbidden("Access token is invalid")
	}

	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Forbidden("Access token is invalid")
	}
	return id, nil
}

func (s *IdentityService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		ProfileImg:  user.PersonalInfo.ProfileImg,
		Username:    user.PersonalInfo.Username,
		Fullname:    user.PersonalInfo.Fullname,
		AccessToken: token,
	}, nil
}
