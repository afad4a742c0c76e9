package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirehub/server/internal/api/types"
	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/oauth"
	"github.com/hirehub/server/internal/services"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
)

const (
	stateCookie   = "oauth_state"
	stateLifetime = 5 * time.Minute
)

type AuthHandler struct {
	auth      services.AuthService
	tokens    *auth.TokenManager
	providers *oauth.Registry
	frontURL  string
	secure    bool
}

// NewAuthHandler builds the auth endpoints. frontURL is the front-end origin
// provider callbacks redirect back to; secure marks the state cookie Secure.
func NewAuthHandler(svc services.AuthService, tokens *auth.TokenManager, providers *oauth.Registry, frontURL string, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:      svc,
		tokens:    tokens,
		providers: providers,
		frontURL:  strings.TrimRight(frontURL, "/"),
		secure:    secure,
	}
}

// Signup godoc
// @Summary  Local signup
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body types.SignupRequest true "credentials"
// @Success  201 {object} types.TokenResponse
// @Failure  409 {object} types.APIResponse
// @Router   /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.auth.SignupLocal(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.TokenResponse{
		TokenType:          "Bearer",
		AccessToken:        token,
		Role:               string(u.Role),
		Message:            "signup completed",
		RequiresOnboarding: true,
	})
}

// Login godoc
// @Summary  Local login
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body types.LoginRequest true "credentials"
// @Success  200 {object} types.LoginResponse
// @Failure  401 {object} types.LoginResponse
// @Router   /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.auth.AuthenticateLocal(r.Context(), req.Email, req.Password)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeBadCredentials) {
			writeJSON(w, http.StatusUnauthorized, types.LoginResponse{Success: false, Message: services.BadCredentialsMessage})
			return
		}
		writeError(w, r, err)
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{
		Success:            true,
		TokenType:          "Bearer",
		AccessToken:        token,
		Role:               string(u.Role),
		Email:              u.Email,
		UserID:             u.ID,
		RequiresOnboarding: u.NeedsOnboarding(),
	})
}

// Me godoc
// @Summary   Describe the bearer
// @Tags      auth
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} types.MeResponse
// @Failure   401 {object} types.APIResponse
// @Router    /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subject(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	u, err := h.auth.FindByEmail(r.Context(), sub.Email)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			writeErrorStr(w, http.StatusUnauthorized, "USER_NOT_FOUND", "user not found")
			return
		}
		writeError(w, r, err)
		return
	}
	resp := types.MeResponse{ID: u.ID, Email: u.Email, Role: string(u.Role)}
	if strings.TrimSpace(u.Name) != "" {
		resp.Name = &u.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

// subject resolves the caller. /api/auth/ is outside the Gate, so the bearer
// is verified here when the context carries no principal.
func (h *AuthHandler) subject(r *http.Request) (auth.Subject, bool) {
	if s, ok := auth.SubjectFrom(r.Context()); ok {
		return s, true
	}
	tok, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return auth.Subject{}, false
	}
	id, err := h.tokens.Verify(tok)
	if err != nil {
		return auth.Subject{}, false
	}
	return auth.SubjectOf(h.auth.Principal(r.Context(), id))
}

// ProviderRedirect sends the browser to the provider's consent page.
func (h *AuthHandler) ProviderRedirect(w http.ResponseWriter, r *http.Request) {
	p, ok := h.providers.Get(chi.URLParam(r, "provider"))
	if !ok {
		writeErrorStr(w, http.StatusNotFound, string(appErr.CodeNotFound), "unknown identity provider")
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

// ProviderCallback finishes the code flow and hands the token to the front end.
func (h *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	log := logger.L().With(zap.String("provider", name))
	p, ok := h.providers.Get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.Info("provider returned error", zap.String("error", e))
		h.loginFailed(w, r, "access_denied")
		return
	}
	code := q.Get("code")
	if code == "" {
		h.loginFailed(w, r, "missing_code")
		return
	}
	state := q.Get("state")
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != state {
		log.Warn("state mismatch on provider callback")
		h.loginFailed(w, r, "invalid_state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secure})

	profile, err := p.Exchange(r.Context(), code, state)
	if err != nil {
		log.Error("provider exchange failed", zap.Error(err))
		h.loginFailed(w, r, "provider_unavailable")
		return
	}
	u, created, err := h.auth.ResolveExternal(r.Context(), profile)
	if err != nil {
		switch appErr.CodeOf(err) {
		case appErr.CodeMissingEmail:
			h.loginFailed(w, r, "missing_email")
		case appErr.CodeForbidden:
			h.loginFailed(w, r, "withdrawn")
		default:
			log.Error("resolve provider identity failed", zap.Error(err))
			h.loginFailed(w, r, "server_error")
		}
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		log.Error("issue token failed", zap.Error(err))
		h.loginFailed(w, r, "server_error")
		return
	}

	target := p.FrontRedirectURL
	if target == "" {
		target = h.frontURL + "/auth/callback"
	}
	v := url.Values{}
	v.Set("token", token)
	v.Set("isNewUser", strconv.FormatBool(created || u.NeedsOnboarding()))
	v.Set("email", u.Email)
	http.Redirect(w, r, target+"?"+v.Encode(), http.StatusFound)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.frontURL+"/login?error="+url.QueryEscape(reason), http.StatusFound)
}
