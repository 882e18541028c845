package firebase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitFirebaseMissingCredentials(t *testing.T) {
	_, err := InitFirebase(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoCredentials))

	_, err = InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")
}
