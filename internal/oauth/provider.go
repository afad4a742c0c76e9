package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hirehub/server/pkg/config"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
)

// Endpoints locate a provider's authorization, token and user-info URLs.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	AuthStyle   oauth2.AuthStyle
	Scopes      []string
}

// DefaultEndpoints are the production endpoints of the supported providers.
var DefaultEndpoints = map[string]Endpoints{
	"google": {
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		AuthStyle:   oauth2.AuthStyleInParams,
		Scopes:      []string{"openid", "email", "profile"},
	},
	"kakao": {
		AuthURL:     "https://kauth.kakao.com/oauth/authorize",
		TokenURL:    "https://kauth.kakao.com/oauth/token",
		UserInfoURL: "https://kapi.kakao.com/v2/user/me",
		AuthStyle:   oauth2.AuthStyleInParams,
		Scopes:      []string{"profile_nickname", "account_email"},
	},
	"naver": {
		AuthURL:     "https://nid.naver.com/oauth2.0/authorize",
		TokenURL:    "https://nid.naver.com/oauth2.0/token",
		UserInfoURL: "https://openapi.naver.com/v1/nid/me",
		AuthStyle:   oauth2.AuthStyleInParams,
	},
}

// Provider performs the authorization-code exchange for one identity provider.
type Provider struct {
	Name             string
	FrontRedirectURL string

	oauth      *oauth2.Config
	userInfo   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewProvider builds a provider from its client registration and endpoints.
func NewProvider(pc config.ProviderConfig, ep Endpoints, timeout time.Duration, client *http.Client) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{
		Name:             pc.Name,
		FrontRedirectURL: pc.FrontRedirectURL,
		oauth: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURI,
			Scopes:       ep.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: ep.AuthStyle,
			},
		},
		userInfo:   ep.UserInfoURL,
		timeout:    timeout,
		httpClient: client,
	}
}

// AuthCodeURL is the provider URL the browser is redirected to.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's profile.
// The whole round-trip is bounded by the provider timeout.
func (p *Provider) Exchange(ctx context.Context, code, state string) (Profile, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	var opts []oauth2.AuthCodeOption
	if state != "" {
		opts = append(opts, oauth2.SetAuthURLParam("state", state))
	}
	tok, err := p.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return Profile{}, appErr.Wrap(err, appErr.CodeUnavailable, p.Name+" token exchange failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfo, nil)
	if err != nil {
		return Profile{}, appErr.Wrap(err, appErr.CodeInternal, "build user-info request failed")
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, appErr.Wrap(err, appErr.CodeUnavailable, p.Name+" user-info request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Profile{}, appErr.New(appErr.CodeUnavailable, fmt.Sprintf("%s user-info returned %d", p.Name, resp.StatusCode))
	}

	raw := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Profile{}, appErr.Wrap(err, appErr.CodeUnavailable, p.Name+" user-info decode failed")
	}
	return Profile{Provider: p.Name, Raw: raw}, nil
}

// Registry holds the enabled providers by name.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry enables every provider that has a client id. Unconfigured
// providers are skipped with a warning.
func NewRegistry(cfg *config.Config, endpoints map[string]Endpoints, client *http.Client) *Registry {
	if endpoints == nil {
		endpoints = DefaultEndpoints
	}
	r := &Registry{providers: map[string]*Provider{}}
	for _, pc := range cfg.Providers() {
		if !pc.Enabled() {
			logger.L().Warn("identity provider disabled", zap.String("provider", pc.Name))
			continue
		}
		ep, ok := endpoints[pc.Name]
		if !ok {
			continue
		}
		r.providers[pc.Name] = NewProvider(pc, ep, cfg.OAuthTimeout, client)
	}
	return r
}

// Get returns the named provider if enabled.
func (r *Registry) Get(name string) (*Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists enabled providers in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
