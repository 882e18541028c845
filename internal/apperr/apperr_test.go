package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("blog not found")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(Internal("insert failed", errors.New("timeout"))))
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "Comment not found", MessageOf(NotFound("Comment not found")))
	assert.Equal(t, "Something went wrong", MessageOf(Internal("insert failed", errors.New("socket closed"))))
	assert.Equal(t, "Something went wrong", MessageOf(errors.New("raw")))
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("deleting: %w", NotFound("Comment not found"))
	assert.True(t, errors.Is(err, NotFound("")))
	assert.False(t, errors.Is(err, Conflict("")))
	assert.True(t, IsNotFound(err))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("counting likes", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusForbidden,
		KindForbidden:    http.StatusForbidden,
		KindBadRequest:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), string(kind))
	}
}
