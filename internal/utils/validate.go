package utils

import (
	"errors"
	"strings"

	"apartmentqueue/internal/types"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct runs the struct's validate tags and reports failures as
// ErrValidation naming every offending field.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return types.Validationf("%v", err)
	}

	fields := make([]string, len(fieldErrors))
	for i, fieldError := range fieldErrors {
		fields[i] = fieldError.Field() + " failed " + fieldError.Tag()
	}
	return types.Validationf("%s", strings.Join(fields, ", "))
}
