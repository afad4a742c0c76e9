package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is a live-chat room row. The id is chosen by the client.
type Session struct {
	ID        string         `gorm:"primaryKey;size:255" json:"id"`
	Ctx       datatypes.JSON `gorm:"column:ctx" json:"ctx,omitempty" swaggertype:"object"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (Session) TableName() string { return "session" }

// LiveChat is one persisted chat message.
type LiveChat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"size:255;not null;index:idx_live_chat_session_created,priority:1" json:"sessionId"`
	Session   *Session  `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    *int64    `gorm:"index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Role      string    `gorm:"size:16" json:"role"`
	CreateAt  time.Time `gorm:"column:create_at;not null;index:idx_live_chat_session_created,priority:2" json:"createAt"`
}

func (LiveChat) TableName() string { return "live_chat" }
