package auth

import (
	"context"

	"github.com/hirehub/server/internal/models"
)

// Principal is the identity attached to a request or channel.
// It is one of LocalUser, ProviderUser or Anonymous.
type Principal interface {
	isPrincipal()
}

type LocalUser struct {
	ID    int64
	Email string
	Role  models.Role
}

type ProviderUser struct {
	ID       int64
	Email    string
	Provider string
	Role     models.Role
}

type Anonymous struct{}

func (LocalUser) isPrincipal()    {}
func (ProviderUser) isPrincipal() {}
func (Anonymous) isPrincipal()    {}

// Subject is the {userId, email, role} triple handlers consume.
type Subject struct {
	UserID int64
	Email  string
	Role   models.Role
}

// SubjectOf flattens an authenticated principal. ok is false for Anonymous and nil.
func SubjectOf(p Principal) (Subject, bool) {
	switch v := p.(type) {
	case LocalUser:
		return Subject{UserID: v.ID, Email: v.Email, Role: v.Role}, true
	case ProviderUser:
		return Subject{UserID: v.ID, Email: v.Email, Role: v.Role}, true
	default:
		return Subject{}, false
	}
}

// PrincipalFor builds the principal variant that matches the user's credential source.
func PrincipalFor(u *models.User) Principal {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	if u.Provider != "" && u.Provider != models.ProviderLocal {
		return ProviderUser{ID: u.ID, Email: u.Email, Provider: u.Provider, Role: role}
	}
	return LocalUser{ID: u.ID, Email: u.Email, Role: role}
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal in ctx, or Anonymous.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}

// SubjectFrom is SubjectOf(PrincipalFrom(ctx)).
func SubjectFrom(ctx context.Context) (Subject, bool) {
	return SubjectOf(PrincipalFrom(ctx))
}

// Resolver maps a verified token identity to a principal.
type Resolver interface {
	Principal(ctx context.Context, id Identity) Principal
}

// ClaimsResolver trusts the token claims alone and yields a LocalUser.
type ClaimsResolver struct{}

func (ClaimsResolver) Principal(_ context.Context, id Identity) Principal {
	return LocalUser{ID: id.UserID, Email: id.Email, Role: models.RoleUser}
}
