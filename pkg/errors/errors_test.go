package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := New(CodeInvalidToken, "token expired")
	wrapped := fmt.Errorf("verify: %w", base)

	assert.True(t, IsCode(wrapped, CodeInvalidToken))
	assert.False(t, IsCode(wrapped, CodeBadCredentials))
	assert.Equal(t, CodeInvalidToken, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(fmt.Errorf("plain")))
}

func TestErrorString(t *testing.T) {
	e := Wrap(fmt.Errorf("boom"), CodeInternal, "append failed")
	assert.Equal(t, "internal: append failed: boom", e.Error())
	assert.Equal(t, "conflict: taken", New(CodeConflict, "taken").Error())

	var nilErr *AppError
	assert.Equal(t, "<nil>", nilErr.Error())
}
