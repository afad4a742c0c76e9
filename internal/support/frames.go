package support

import (
	"strings"

	"github.com/hirehub/server/internal/auth"
)

// Frame types carried in the chat envelope.
const (
	TypeText              = "TEXT"
	TypeHandoffRequested  = "HANDOFF_REQUESTED"
	TypeHandoffAccepted   = "HANDOFF_ACCEPTED"
	TypeUserDisconnected  = "USER_DISCONNECTED"
	TypeAgentDisconnected = "AGENT_DISCONNECTED"
)

const (
	RoleUser   = "USER"
	RoleSystem = "SYS"

	// AcceptedText is the system line sent to a room when an agent joins.
	AcceptedText = "agent connected"

	// defaultDisplay fills name fields of users that could not be resolved.
	defaultDisplay = "user"
)

// Topics.
const (
	QueueTopic      = "/topic/support/queue"
	QueueTopicAlias = "/topic/support.queue"
	roomTopicPrefix = "/topic/rooms/"
)

// RoomTopic is the broadcast destination of one room.
func RoomTopic(roomID string) string { return roomTopicPrefix + roomID }

// CanonicalTopic maps accepted subscription spellings onto the topics messages are published to.
// "rooms/r1" and "/topic/rooms/r1" are the same topic; so are both queue spellings.
func CanonicalTopic(dest string) string {
	d := strings.TrimSpace(dest)
	if !strings.HasPrefix(d, "/") {
		d = "/" + d
	}
	if !strings.HasPrefix(d, "/topic/") {
		d = "/topic" + d
	}
	if d == QueueTopicAlias {
		return QueueTopic
	}
	return d
}

// Frame is the inbound chat envelope.
type Frame struct {
	Type     string              `json:"type"`
	Role     string              `json:"role,omitempty"`
	Text     string              `json:"text,omitempty"`
	UserID   auth.OptionalUserID `json:"userId"`
	Nickname string              `json:"nickname,omitempty"`
	RoomID   string              `json:"roomId,omitempty"`
}

func (f Frame) userID() *int64 { return f.UserID.Ptr() }

// RoomEvent is broadcast on a room topic.
type RoomEvent struct {
	Type         string `json:"type"`
	Role         string `json:"role,omitempty"`
	Text         string `json:"text,omitempty"`
	UserID       *int64 `json:"userId,omitempty"`
	Nickname     string `json:"nickname,omitempty"`
	UserName     string `json:"userName,omitempty"`
	UserNickname string `json:"userNickname,omitempty"`
	RoomID       string `json:"roomId"`
	MessageID    int64  `json:"messageId,omitempty"`
	// Durable is false when the message was delivered but not stored.
	Durable *bool `json:"durable,omitempty"`
}

// QueueEvent is broadcast on the agent queue topic.
type QueueEvent struct {
	Event        string `json:"event"`
	RoomID       string `json:"roomId"`
	UserName     string `json:"userName"`
	UserNickname string `json:"userNickname"`
}
