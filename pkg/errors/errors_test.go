package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := apperrors.NewNotFoundError("queue room abc not found")
		assert.Equal(t, "NOT_FOUND: queue room abc not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("connection reset")
		err := apperrors.NewInternalError("failed to purge queue room", cause)
		assert.Equal(t, "INTERNAL: failed to purge queue room: connection reset", err.Error())
		assert.ErrorIs(t, err, cause)
	})
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("void failed: %w", apperrors.NewNotFoundError("missing"))

	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(wrapped))
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(stderrors.New("plain")))
	assert.True(t, apperrors.IsNotFound(wrapped))
	assert.False(t, apperrors.IsNotFound(nil))
	assert.True(t, apperrors.IsValidation(apperrors.NewValidationError("queue cannot be nil")))
	assert.False(t, apperrors.IsValidation(wrapped))
	assert.True(t, apperrors.IsConflict(apperrors.NewConflictError("failed to purge queue room", nil)))
	assert.False(t, apperrors.IsConflict(wrapped))
}
