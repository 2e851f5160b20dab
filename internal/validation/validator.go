// Package validation provides request validation built on validator/v10.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/storybookapp/storybook-server/internal/domain"
	domainerrors "github.com/storybookapp/storybook-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for story payloads. The custom "genre",
// "audience", and "wizardstep" tags validate the wizard's enumerations.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return domain.Genre(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		return domain.Audience(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("wizardstep", func(fl validator.FieldLevel) bool {
		return domain.Step(fl.Field().Int()).Valid()
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to a domain validation error with
// per-field details.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	return domainerrors.Validation("validation failed").WithDetails(fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "genre":
		return "must be a recognized genre"
	case "audience":
		return "must be a recognized audience"
	case "wizardstep":
		return "must be a wizard step between 1 and 3"
	default:
		return "is invalid"
	}
}
