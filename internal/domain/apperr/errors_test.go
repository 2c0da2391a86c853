package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_WrapsKind(t *testing.T) {
	err := Validationf("approver %s cannot be resolved", "m9")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "approver m9 cannot be resolved", err.Error())

	wrapped := fmt.Errorf("submit letter: %w", err)
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, "approver m9 cannot be resolved", Message(wrapped, "internal error"))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("sql: database is locked"), "internal error"))
}

func TestIsStoreDown(t *testing.T) {
	assert.True(t, IsStoreDown(fmt.Errorf("read letters: %w", ErrStoreUnavailable)))
	assert.True(t, IsStoreDown(fmt.Errorf("read letters: %w", ErrRateLimited)))
	assert.False(t, IsStoreDown(NotFoundf("letter not found")))
}
