package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateValidationErrors(t *testing.T) {
	validate, translator := NewValidator()

	type payload struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
		Title    string `json:"title" validate:"notblank"`
	}

	err := validate.Struct(payload{Title: "   "})
	require.Error(t, err)

	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	assert.Equal(t, map[string]string{
		"email":    "this field is required",
		"password": "this field is required",
		"title":    "this field cannot be blank",
	}, TranslateValidationErrors(vErrs, translator))
}

func TestValidationError(t *testing.T) {
	base := NewShutdownError("bye")
	err := NewValidationError(base, FieldError{Field: "email", Error: "taken"})
	assert.Equal(t, "bye", err.Error())
	assert.ErrorIs(t, err, base)

	err = NewValidationError(nil, FieldError{Field: "email", Error: "taken"})
	assert.Equal(t, "email: taken", err.Error())

	assert.True(t, IsShutdown(base))
	assert.False(t, IsShutdown(err))
}
