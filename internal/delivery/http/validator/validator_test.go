package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&loginBody{Email: "ana@x.io", Password: "pw1"}))

	err := v.Validate(&loginBody{Email: "ana@x.io"})
	var fieldErrs validator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "password", fieldErrs[0].Field())
	assert.Equal(t, "required", fieldErrs[0].Tag())
}

func TestNewStructValidator_UsesJSONNames(t *testing.T) {
	type body struct {
		Confirmation string `json:"passwordConfirmation,omitempty" validate:"required"`
		Internal     string `json:"-" validate:"required"`
	}

	err := NewStructValidator().Struct(&body{})

	var fieldErrs validator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "passwordConfirmation", fieldErrs[0].Field())
	assert.Equal(t, "Internal", fieldErrs[1].Field())
}
