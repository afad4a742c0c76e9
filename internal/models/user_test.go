package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsOnboarding(t *testing.T) {
	u := &User{Email: "a@b.c"}
	assert.True(t, u.NeedsOnboarding())

	u.Name, u.Nickname, u.Phone, u.Dob, u.Gender = "Kim", "kim", "010-1234-5678", "1990-01-01", "F"
	assert.False(t, u.NeedsOnboarding())
}

func TestIsWithdrawn(t *testing.T) {
	u := &User{Nickname: "kim"}
	assert.False(t, u.IsWithdrawn())
	u.Nickname = WithdrawnNickname
	assert.True(t, u.IsWithdrawn())
}

func TestDisplayNickname(t *testing.T) {
	var nilUser *User
	assert.Equal(t, AnonymousNickname, nilUser.DisplayNickname())
	assert.Equal(t, AnonymousNickname, (&User{Nickname: " ", Name: ""}).DisplayNickname())
	assert.Equal(t, "Kim", (&User{Name: "Kim"}).DisplayNickname())
	assert.Equal(t, "kimmy", (&User{Nickname: "kimmy", Name: "Kim"}).DisplayNickname())
}
