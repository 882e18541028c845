package middleware

import (
	"strings"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userIDKey = "userID"

// TokenParser validates an access token and returns its user
type TokenParser interface {
	ParseToken(token string) (primitive.ObjectID, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the caller's user ID in the context.
// A missing token is unauthorized (401); a token that fails verification is forbidden (403).
func JWTAuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return apperr.Unauthorized("No access token")
			}

			userID, err := parser.ParseToken(token)
			if err != nil {
				return apperr.Forbidden("Access token is invalid")
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// Expecting "Bearer <token>"
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// UserID returns the authenticated user set by JWTAuthMiddleware
func UserID(c echo.Context) (primitive.ObjectID, error) {
	id, ok := c.Get(userIDKey).(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("No access token")
	}
	return id, nil
}
