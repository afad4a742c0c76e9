package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	appErr "github.com/hirehub/server/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	cases := map[appErr.Code]int{
		appErr.CodeInvalid:           http.StatusBadRequest,
		appErr.CodeMissingEmail:      http.StatusBadRequest,
		appErr.CodeInvalidToken:      http.StatusUnauthorized,
		appErr.CodeBadCredentials:    http.StatusUnauthorized,
		appErr.CodeForbidden:         http.StatusForbidden,
		appErr.CodeNotFound:          http.StatusNotFound,
		appErr.CodeDuplicateEmail:    http.StatusConflict,
		appErr.CodeDuplicateNickname: http.StatusConflict,
		appErr.CodeDuplicatePhone:    http.StatusConflict,
		appErr.CodeInternal:          http.StatusInternalServerError,
		appErr.CodeConfig:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(appErr.New(code, "x")), code)
	}
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", appErr.New(appErr.CodeNotFound, "user not found"))
	assert.Equal(t, http.StatusNotFound, StatusFor(wrapped))
}

func TestFromAppErrorHidesInternalDetail(t *testing.T) {
	e := FromAppError(appErr.Wrap(errors.New("pq: connection refused"), appErr.CodeInternal, "query failed"))
	assert.Equal(t, "internal", e.Code)
	assert.Equal(t, "internal server error", e.Message)

	e = FromAppError(errors.New("boom"))
	assert.Equal(t, "internal server error", e.Message)

	e = FromAppError(appErr.Wrap(errors.New("driver detail"), appErr.CodeDuplicateEmail, "email already registered"))
	assert.Equal(t, "duplicate_email", e.Code)
	assert.Equal(t, "email already registered", e.Message)

	assert.Nil(t, FromAppError(nil))
}
