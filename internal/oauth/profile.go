package oauth

import (
	"fmt"
	"strings"
)

// Profile is the user-info document returned by an identity provider.
type Profile struct {
	Provider string
	Raw      map[string]any
}

// Email returns the canonical email for the provider, or "" when the profile has none.
//
//	google  email
//	kakao   kakao_account.email
//	naver   response.email
func (p Profile) Email() string {
	var v string
	switch p.Provider {
	case "google":
		v = lookup(p.Raw, "email")
	case "kakao":
		v = lookup(p.Raw, "kakao_account", "email")
	case "naver":
		v = lookup(p.Raw, "response", "email")
	}
	return strings.TrimSpace(v)
}

// Name returns the display name the provider supplied, if any.
func (p Profile) Name() string {
	switch p.Provider {
	case "google":
		return lookup(p.Raw, "name")
	case "kakao":
		return lookup(p.Raw, "kakao_account", "profile", "nickname")
	case "naver":
		return lookup(p.Raw, "response", "name")
	}
	return ""
}

// ExternalID returns the provider's subject id, used only in logs.
func (p Profile) ExternalID() string {
	switch p.Provider {
	case "google":
		return lookup(p.Raw, "sub")
	case "kakao":
		return lookup(p.Raw, "id")
	case "naver":
		return lookup(p.Raw, "response", "id")
	}
	return ""
}

func lookup(m map[string]any, path ...string) string {
	var cur any = m
	for _, k := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[k]
	}
	switch v := cur.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
