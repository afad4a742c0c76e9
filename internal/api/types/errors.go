package types

import (
	"errors"
	"net/http"

	appErr "github.com/hirehub/server/pkg/errors"
)

// StatusFor maps an error's code to the HTTP status it is surfaced as.
func StatusFor(err error) int {
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid, appErr.CodeMissingEmail:
		return http.StatusBadRequest
	case appErr.CodeUnauthorized, appErr.CodeInvalidToken, appErr.CodeBadCredentials:
		return http.StatusUnauthorized
	case appErr.CodeForbidden:
		return http.StatusForbidden
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict, appErr.CodeDuplicateEmail, appErr.CodeDuplicateNickname, appErr.CodeDuplicatePhone:
		return http.StatusConflict
	case appErr.CodeUnavailable:
		return http.StatusServiceUnavailable
	case appErr.CodeDeadline:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FromAppError converts err into the wire error. Internal failures only expose a generic message.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	code := appErr.CodeOf(err)
	switch code {
	case appErr.CodeUnknown, appErr.CodeInternal, appErr.CodeConfig:
		return &APIError{Code: string(appErr.CodeInternal), Message: "internal server error"}
	}
	msg := err.Error()
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	return &APIError{Code: string(code), Message: msg}
}
