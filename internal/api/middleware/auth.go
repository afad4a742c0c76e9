package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/pkg/logger"
)

var (
	exemptPrefixes = []string{
		"/api/auth/",
		"/api/public/",
		"/swagger-ui/",
		"/v3/api-docs/",
		"/login",
		"/oauth2/",
		"/ws/",
	}
	exemptExact = map[string]struct{}{
		"/":        {},
		"/api/ads": {},
	}
)

// Exempt reports whether path bypasses token inspection.
func Exempt(path string) bool {
	if _, ok := exemptExact[path]; ok {
		return true
	}
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Gate attaches the bearer's principal to the request context when the path is
// not exempt and the token verifies. It never rejects; handlers that need an
// identity answer 401 themselves.
func Gate(tokens *auth.TokenManager, resolver auth.Resolver) func(http.Handler) http.Handler {
	if resolver == nil {
		resolver = auth.ClaimsResolver{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			tok, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, err := tokens.Verify(tok)
			if err != nil {
				logger.L().Debug("bearer rejected",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			p := resolver.Principal(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}
