package middleware

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusForm struct {
	Status   string `json:"status" binding:"required,orderstatus"`
	Email    string `json:"email" binding:"omitempty,email"`
	Quantity int    `form:"quantity" binding:"omitempty,min=1"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func TestValidationDetails(t *testing.T) {
	v := newValidator()

	err := v.Struct(statusForm{Status: "lost", Email: "not-an-email", Quantity: -1})
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Len(t, details, 3)
	assert.Equal(t, "status", details[0].Field)
	assert.Contains(t, details[0].Message, "pending, processing, shipped, delivered, cancelled")
	assert.Equal(t, "email", details[1].Field)
	assert.Equal(t, "Invalid email format", details[1].Message)
	assert.Equal(t, "quantity", details[2].Field)
	assert.Equal(t, "Must be at least 1", details[2].Message)
}

func TestValidationDetails_AcceptsKnownStatus(t *testing.T) {
	assert.NoError(t, newValidator().Struct(statusForm{Status: "shipped"}))
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	var target statusForm
	err := json.Unmarshal([]byte(`{"status": 5}`), &target)
	require.Error(t, err)
	assert.Nil(t, ValidationDetails(err))
}

func TestSetupValidator(t *testing.T) {
	assert.NoError(t, SetupValidator())
}
