package types

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

// TokenResponse is returned by signup and onboarding.
type TokenResponse struct {
	TokenType          string `json:"tokenType"`
	AccessToken        string `json:"accessToken"`
	Role               string `json:"role"`
	Message            string `json:"message,omitempty"`
	RequiresOnboarding bool   `json:"requiresOnboarding"`
}

// LoginResponse is the body of a local login, successful or not.
type LoginResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message,omitempty"`
	TokenType          string `json:"tokenType,omitempty"`
	AccessToken        string `json:"accessToken,omitempty"`
	Role               string `json:"role,omitempty"`
	Email              string `json:"email,omitempty"`
	UserID             int64  `json:"userId,omitempty"`
	RequiresOnboarding bool   `json:"requiresOnboarding"`
}

// MeResponse describes the bearer. Name is null when blank.
type MeResponse struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}
