// Package validation wraps go-playground/validator for the domain entities and
// turns its errors into human-readable ValidationErrors.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "currencies-app/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names so messages match form and column names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("finite", finite)
	return v
}

// finite rejects NaN and infinities; non-float kinds always pass.
func finite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	default:
		return true
	}
}

// Struct validates every tagged field of s.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return format(err, "")
	}
	return nil
}

// Field validates a single value against tag, reporting failures under name.
func Field(name string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return format(err, name)
	}
	return nil
}

// format converts validator.ValidationErrors into a human-readable error message.
func format(err error, fieldName string) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		if fieldName != "" {
			field = fieldName
		}
		messages = append(messages, message(field, e))
	}
	return apperrors.JoinMessages(messages)
}

func message(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "number":
		return fmt.Sprintf("%s must contain only digits", field)
	case "alpha":
		return fmt.Sprintf("%s must contain only latin letters", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
