package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantParams struct {
	FileID string `validate:"required,uuid"`
	Limit  int    `validate:"gte=1,lte=500"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		err := ValidateStruct(grantParams{
			FileID: "a2aa1b3a-5d6a-4a40-9a8e-2f4f87ab16c1",
			Limit:  50,
		})
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateStruct(grantParams{Limit: 50})
		require.Error(t, err)
		require.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Equal(t, "FileID is required", fields["FileID"])
	})

	t.Run("malformed uuid", func(t *testing.T) {
		err := ValidateStruct(grantParams{FileID: "not-a-uuid", Limit: 50})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Equal(t, "FileID must be a valid UUID", fields["FileID"])
	})

	t.Run("bound violations report the limit", func(t *testing.T) {
		err := ValidateStruct(grantParams{
			FileID: "a2aa1b3a-5d6a-4a40-9a8e-2f4f87ab16c1",
			Limit:  1000,
		})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Equal(t, "Limit must be at most 500", fields["Limit"])

		err = ValidateStruct(grantParams{
			FileID: "a2aa1b3a-5d6a-4a40-9a8e-2f4f87ab16c1",
			Limit:  0,
		})
		require.Error(t, err)
		assert.Equal(t, "Limit must be at least 1", GetValidationFields(err)["Limit"])
	})

	t.Run("multiple failures report every field", func(t *testing.T) {
		err := ValidateStruct(grantParams{FileID: "", Limit: 0})
		require.Error(t, err)
		assert.Len(t, GetValidationFields(err), 2)
	})
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{Message: "Validation failed", Fields: map[string]string{"X": "X is required"}}

	assert.Equal(t, "Validation failed", verr.Error())
	assert.True(t, IsValidationError(verr))

	t.Run("wrapped errors are still recognized", func(t *testing.T) {
		wrapped := errors.Join(errors.New("request rejected"), verr)
		assert.True(t, IsValidationError(wrapped))
		assert.Equal(t, verr.Fields, GetValidationFields(wrapped))
	})

	t.Run("other errors are not validation errors", func(t *testing.T) {
		plain := errors.New("boom")
		assert.False(t, IsValidationError(plain))
		assert.Nil(t, GetValidationFields(plain))
	})
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"user@example.com", true},
		{"site-admin-2@revisetax.com", true},
		{"user+tag@sub.example.co.in", true},
		{"admin", false},
		{"@example.com", false},
		{"user@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
