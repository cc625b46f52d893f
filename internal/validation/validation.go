// Package validation builds the struct validator shared by the HTTP layer and services.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "starwars/internal/errors"
	"starwars/internal/model"
)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("character_status", func(fl validator.FieldLevel) bool {
		return model.CharacterStatus(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates s and converts failures into an ErrValidation with readable details.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "character_status":
		names := make([]string, len(model.CharacterStatuses))
		for i, s := range model.CharacterStatuses {
			names[i] = string(s)
		}
		return field + " must be one of " + strings.Join(names, ", ")
	case "min":
		return field + " is too short"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
