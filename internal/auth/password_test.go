package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirehub/server/internal/models"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("p@ss")
	require.NoError(t, err)
	b, err := h.Hash("p@ss")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "salt must differ per hash")
	assert.True(t, h.Verify(a, "p@ss"))
	assert.False(t, h.Verify(a, "wrong"))
}

func TestRandomSecret(t *testing.T) {
	a, b := RandomSecret("google"), RandomSecret("google")
	assert.True(t, strings.HasPrefix(a, "google_"))
	assert.NotEqual(t, a, b)
}

func TestPrincipalFor(t *testing.T) {
	p := PrincipalFor(&models.User{ID: 1, Email: "a@b.c", Provider: models.ProviderLocal, Role: models.RoleAdmin})
	assert.Equal(t, LocalUser{ID: 1, Email: "a@b.c", Role: models.RoleAdmin}, p)

	p = PrincipalFor(&models.User{ID: 2, Email: "x@y.z", Provider: models.ProviderKakao})
	assert.Equal(t, ProviderUser{ID: 2, Email: "x@y.z", Provider: "kakao", Role: models.RoleUser}, p)

	s, ok := SubjectOf(p)
	assert.True(t, ok)
	assert.Equal(t, int64(2), s.UserID)

	_, ok = SubjectOf(Anonymous{})
	assert.False(t, ok)
	_, ok = SubjectOf(nil)
	assert.False(t, ok)
}
