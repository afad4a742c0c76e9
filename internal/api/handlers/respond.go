package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hirehub/server/internal/api/types"
	"github.com/hirehub/server/internal/api/validators"
	"github.com/hirehub/server/internal/auth"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError surfaces err with the status its code maps to. Server-side
// failures are logged with their cause and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := types.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: code, Message: msg}})
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return appErr.New(appErr.CodeInvalid, "request body is required")
		}
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid json")
	}
	if err := validators.New().Struct(v); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, validators.Message(err))
	}
	return nil
}

// requireSubject answers 401 when the Gate attached no identity.
func requireSubject(w http.ResponseWriter, r *http.Request) (auth.Subject, bool) {
	s, ok := auth.SubjectFrom(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}
	return s, ok
}
