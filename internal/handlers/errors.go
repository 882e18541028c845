package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  apperr.Kind `json:"code"`
}

// NewHTTPErrorHandler renders apperr values and echo errors as ErrorResponse.
// Internal failures are logged and reported with a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err)
		if body.Code == apperr.KindInternal {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("writing error response")
		}
	}
}

func errorBody(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := kindForStatus(he.Code)
		msg := http.StatusText(he.Code)
		if kind != apperr.KindInternal {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, ErrorResponse{Error: msg, Code: kind}
	}

	kind := apperr.KindOf(err)
	return apperr.HTTPStatus(kind), ErrorResponse{Error: apperr.MessageOf(err), Code: kind}
}

func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apperr.KindBadRequest
	case http.StatusUnauthorized:
		return apperr.KindUnauthorized
	case http.StatusForbidden:
		return apperr.KindForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperr.KindNotFound
	case http.StatusConflict:
		return apperr.KindConflict
	default:
		return apperr.KindInternal
	}
}

// bindAndValidate decodes the JSON body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.BadRequest("Invalid request payload")
	}
	return c.Validate(req)
}

// parseID converts a validated hex string into an ObjectID
func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid id")
	}
	return id, nil
}

// optionalID parses hex when present
func optionalID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := parseID(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
