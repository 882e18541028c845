package validators

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/anonto42/blogspace/backend/internal/apperr"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomValidator adapts go-playground/validator to echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator with the project's custom rules registered
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("strongpassword", strongPassword)
	_ = v.RegisterValidation("objectid", objectID)
	return &CustomValidator{validator: v}
}

// Validate checks i and returns an apperr validation error describing the first failure
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperr.Validation(err.Error())
	}
	return apperr.Validation(message(errs[0]))
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Email is invalid"
	case "strongpassword":
		return "Password should be 6 to 20 characters long with a numeric, 1 lowercase and 1 uppercase letters"
	case "objectid":
		return fmt.Sprintf("%s is not a valid id", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid url", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// strongPassword accepts 6 to 20 characters containing a digit, a lowercase and an uppercase letter
func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if n := len([]rune(s)); n < 6 || n > 20 {
		return false
	}
	var digit, lower, upper bool
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return digit && lower && upper
}

func objectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}
