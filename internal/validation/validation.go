// Package validation wraps go-playground/validator and reports failures in
// the service's error taxonomy.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct validates s and returns a VALIDATION_FAILED error listing each
// offending field with the rule it broke.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return apperrors.NewValidationError("invalid input", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
