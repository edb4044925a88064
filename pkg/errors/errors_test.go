package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Entry not found", NewNotFoundError("Entry not found").Error())
	assert.Equal(t,
		"INTERNAL: failed to list entries: boom",
		NewInternalError("failed to list entries", errors.New("boom")).Error(),
	)
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewValidationError("All fields are required"))

	assert.Equal(t, ErrorTypeValidation, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeConflict, TypeOf(NewConflictError("duplicate")))
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain")))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("gone")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(NewValidationError("bad")))

	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", NewValidationError("bad"))))
	assert.False(t, IsValidation(nil))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("failed to create entry", cause)

	assert.ErrorIs(t, err, cause)
}
