package util

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=Patient Doctor Admin"`
}

func TestValidationMessage_UsesJSONNames(t *testing.T) {
	v := validator.New()
	UseJSONFieldNames(v)

	err := v.Struct(sampleRequest{Email: "nope", Password: "short", Role: "Nurse"})
	require.Error(t, err)

	msg := ValidationMessage(err)
	assert.Contains(t, msg, "email must be a valid e-mail address")
	assert.Contains(t, msg, "password must be at least 8")
	assert.Contains(t, msg, "role must be one of [Patient Doctor Admin]")
}

func TestValidationMessage_JSONErrors(t *testing.T) {
	var target sampleRequest
	err := json.Unmarshal([]byte(`{"email":`), &target)
	assert.Equal(t, "request body is not valid JSON", ValidationMessage(err))

	var typed struct {
		Experience int `json:"experience"`
	}
	err = json.Unmarshal([]byte(`{"experience":"ten"}`), &typed)
	assert.Equal(t, "experience must be of type int", ValidationMessage(err))
}

func TestBindError_IsValidation(t *testing.T) {
	err := BindError(assert.AnError)
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "invalid request body", err.Message)
}
