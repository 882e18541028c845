package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    apperr.Kind
		message string
	}{
		{"validation", apperr.Validation("Write something to leave a comment"), http.StatusForbidden, apperr.KindValidation, "Write something to leave a comment"},
		{"forbidden", apperr.Forbidden("You can not delete the comment"), http.StatusForbidden, apperr.KindForbidden, "You can not delete the comment"},
		{"not found", apperr.NotFound("Blog not found"), http.StatusNotFound, apperr.KindNotFound, "Blog not found"},
		{"conflict", apperr.Conflict("Email already exists"), http.StatusConflict, apperr.KindConflict, "Email already exists"},
		{"unauthorized", apperr.Unauthorized("No access token"), http.StatusUnauthorized, apperr.KindUnauthorized, "No access token"},
		{"internal hides detail", apperr.Internal("inserting comment", errors.New("connection reset")), http.StatusInternalServerError, apperr.KindInternal, "Something went wrong"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperr.KindInternal, "Something went wrong"},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, apperr.KindNotFound, "Not Found"},
		{"echo body limit", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, apperr.KindBadRequest, "Request Entity Too Large"},
	}

	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/add-comment", nil), rec)

			handler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestParseID(t *testing.T) {
	_, err := parseID("not-hex")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	id, err := optionalID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = optionalID("507f1f77bcf86cd799439011")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "507f1f77bcf86cd799439011", id.Hex())
}
