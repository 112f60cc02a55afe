// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type requestValidator struct {
	validate *validator.Validate
}

// NewStructValidator returns a go-playground validator that names fields by their json tag,
// so errors match the request body.
func NewStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return v
}

// New returns an echo.Validator that reports fields by their json names.
func New() *requestValidator {
	return &requestValidator{validate: NewStructValidator()}
}

// Validate implements echo.Validator.
func (rv *requestValidator) Validate(i any) error {
	return errors.WithStack(rv.validate.Struct(i))
}
