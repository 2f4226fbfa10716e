package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

// InitValidator initializes the global validator
func InitValidator() {
	validate = &Validator{validate: validator.New()}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map.
// This prevents leaking internal struct names and keeps messages consistent.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "uuid":
			errs[field] = "Must be a valid identifier"
		case "nefield":
			errs[field] = "Must differ from " + e.Param()
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// respondValidationError shapes a failed struct validation into the standard
// error envelope. Handlers respond with it before touching any service.
func respondValidationError(err error) ErrorResponse {
	return ErrorResponse{
		Error: ErrMsgInvalidRequest,
		Field: FormatValidationError(err),
	}
}
