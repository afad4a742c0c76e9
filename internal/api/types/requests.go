package types

import (
	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/pkg/utils"
)

type SignupRequest struct {
	Email    string `json:"email" validate:"required,contains=@"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type OnboardingRequest struct {
	DisplayName string `json:"displayName" validate:"max=50"`
	Nickname    string `json:"nickname" validate:"max=30"`
	Phone       string `json:"phone" validate:"max=20"`
	Dob         string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender"`
	Education   string `json:"education"`
	CareerLevel string `json:"careerLevel"`
	Position    string `json:"position"`
	Address     string `json:"address"`
	Region      string `json:"region"`
}

// ChatSendRequest is the REST fallback of a TEXT frame. sessionId and content
// are the primary names; roomId and text are accepted as aliases.
type ChatSendRequest struct {
	SessionID string              `json:"sessionId" validate:"required_without=RoomID,max=255"`
	RoomID    string              `json:"roomId" validate:"max=255"`
	Content   string              `json:"content" validate:"required_without=Text"`
	Text      string              `json:"text"`
	Type      string              `json:"type"`
	Role      string              `json:"role"`
	UserID    auth.OptionalUserID `json:"userId" swaggertype:"integer"`
	Nickname  string              `json:"nickname"`
}

// Room returns sessionId, falling back to roomId.
func (r ChatSendRequest) Room() string { return utils.FirstNonBlank(r.SessionID, r.RoomID) }

// Message returns content, falling back to text.
func (r ChatSendRequest) Message() string { return utils.FirstNonBlank(r.Content, r.Text) }

type HandoffRequest struct {
	RoomID string              `json:"roomId" validate:"required,max=255"`
	UserID auth.OptionalUserID `json:"userId" swaggertype:"integer"`
}
