package models

import (
	"strings"
	"time"
)

// Role is the authorization role carried by a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Provider names the credential source a user was created from.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// WithdrawnNickname marks a soft-deleted user. The nickname unique index
// predicate on User repeats it.
const WithdrawnNickname = "(탈퇴한 회원)"

// AnonymousNickname is shown for messages without a resolvable user.
const AnonymousNickname = "익명"

// User represents a portal member.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-" swaggerignore:"true"`
	Role         Role      `gorm:"size:16;not null;default:USER" json:"role"`
	Provider     string    `gorm:"size:16;not null;default:local" json:"provider"`
	Name         string    `gorm:"size:100" json:"name"`
	Nickname     string    `gorm:"size:100;uniqueIndex:uq_users_nickname_active,where:nickname <> '' AND nickname <> '(탈퇴한 회원)'" json:"nickname"`
	Phone        string    `gorm:"size:32;uniqueIndex:uq_users_phone,where:phone <> ''" json:"phone"`
	Dob          string    `gorm:"size:32" json:"dob"`
	Gender       string    `gorm:"size:16" json:"gender"`
	Address      string    `gorm:"size:255" json:"address"`
	Region       string    `gorm:"size:100" json:"region"`
	Position     string    `gorm:"size:100" json:"position"`
	CareerLevel  string    `gorm:"size:50" json:"careerLevel"`
	Education    string    `gorm:"size:50" json:"education"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// IsWithdrawn reports whether the user has been soft-deleted.
func (u *User) IsWithdrawn() bool {
	return u.Nickname == WithdrawnNickname
}

// DisplayNickname is the first non-blank of nickname, name and AnonymousNickname.
// It is safe on a nil receiver.
func (u *User) DisplayNickname() string {
	if u == nil {
		return AnonymousNickname
	}
	for _, f := range []string{u.Nickname, u.Name} {
		if strings.TrimSpace(f) != "" {
			return f
		}
	}
	return AnonymousNickname
}

// NeedsOnboarding reports whether any display-profile field is still blank.
func (u *User) NeedsOnboarding() bool {
	for _, f := range []string{u.Name, u.Nickname, u.Phone, u.Dob, u.Gender} {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
