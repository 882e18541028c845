package validators

import (
	"testing"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type passwordForm struct {
	Password string `validate:"required,strongpassword"`
}

type idForm struct {
	ID string `json:"_id" validate:"required,objectid"`
}

func TestStrongPassword(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		password string
		valid    bool
	}{
		{"Secret1", true},
		{"aB3456", true},
		{"Ab1", false},
		{"alllower1", false},
		{"ALLUPPER1", false},
		{"NoDigits", false},
		{"Waytoolongpassword12345", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := v.Validate(passwordForm{Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestObjectID(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(idForm{ID: primitive.NewObjectID().Hex()}))

	err := v.Validate(idForm{ID: "1234"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "id is not a valid id", apperr.MessageOf(err))

	err = v.Validate(idForm{})
	assert.Equal(t, "id is required", apperr.MessageOf(err))
}
