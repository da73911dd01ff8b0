// Package validate turns validator violations into the shared error
// taxonomy with human-readable, per-field Spanish messages.
package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/telecomplus/contratos/internal/apierr"
)

// Struct validates s and returns a *apierr.ValidationError describing every
// violation, or nil when the payload is valid.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.Validation(err.Error())
	}
	return apierr.Validation("datos inválidos", Fields(verrs)...)
}

// Fields maps validator violations to field errors.
func Fields(errs validator.ValidationErrors) []apierr.FieldError {
	out := make([]apierr.FieldError, 0, len(errs))
	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("el campo %s es obligatorio", err.Field())
		case "min":
			msg = fmt.Sprintf("el campo %s es demasiado corto (mínimo %s)", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("el campo %s es demasiado largo (máximo %s)", err.Field(), err.Param())
		case "email":
			msg = fmt.Sprintf("el campo %s debe ser un email válido", err.Field())
		case "oneof":
			msg = fmt.Sprintf("el campo %s debe ser uno de: %s", err.Field(), err.Param())
		case "gte":
			msg = fmt.Sprintf("el campo %s no puede ser negativo", err.Field())
		default:
			msg = fmt.Sprintf("el campo %s no es válido", err.Field())
		}
		out = append(out, apierr.FieldError{Field: err.Field(), Message: msg})
	}
	return out
}
