package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hirehub/server/pkg/config"
	appErr "github.com/hirehub/server/pkg/errors"
	"github.com/hirehub/server/pkg/logger"
)

func fakeProviderServer(t *testing.T, profile map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testEndpoints(base string) Endpoints {
	return Endpoints{AuthURL: base + "/authorize", TokenURL: base + "/token", UserInfoURL: base + "/me"}
}

func TestExchangeReturnsProfile(t *testing.T) {
	srv := fakeProviderServer(t, map[string]any{"email": "x@y.z", "sub": "1", "name": "X"})
	p := NewProvider(config.ProviderConfig{Name: "google", ClientID: "id", ClientSecret: "s", RedirectURI: "http://localhost/google/callback"},
		testEndpoints(srv.URL), 5*time.Second, srv.Client())

	prof, err := p.Exchange(context.Background(), "good-code", "st")
	require.NoError(t, err)
	assert.Equal(t, "x@y.z", prof.Email())
	assert.Equal(t, "X", prof.Name())
	assert.Equal(t, "1", prof.ExternalID())

	_, err = p.Exchange(context.Background(), "bad-code", "st")
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
}

func TestExchangeHonorsTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	p := NewProvider(config.ProviderConfig{Name: "kakao", ClientID: "id", ClientSecret: "s", RedirectURI: "r"},
		testEndpoints(slow.URL), 50*time.Millisecond, slow.Client())
	start := time.Now()
	_, err := p.Exchange(context.Background(), "good-code", "")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAuthCodeURL(t *testing.T) {
	p := NewProvider(config.ProviderConfig{Name: "naver", ClientID: "cid", ClientSecret: "s", RedirectURI: "http://localhost:8080/naver/callback"},
		DefaultEndpoints["naver"], time.Second, nil)
	u, err := url.Parse(p.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "nid.naver.com", u.Host)
	assert.Equal(t, "cid", u.Query().Get("client_id"))
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestProfileEmailPaths(t *testing.T) {
	cases := []struct {
		provider string
		raw      map[string]any
		email    string
		name     string
	}{
		{"google", map[string]any{"email": "g@x.com", "name": "G"}, "g@x.com", "G"},
		{"kakao", map[string]any{"id": float64(123), "kakao_account": map[string]any{"email": "k@x.com", "profile": map[string]any{"nickname": "K"}}}, "k@x.com", "K"},
		{"naver", map[string]any{"response": map[string]any{"email": "n@x.com", "name": "N", "id": "abc"}}, "n@x.com", "N"},
		{"kakao", map[string]any{"id": float64(123), "kakao_account": map[string]any{}}, "", ""},
		{"naver", map[string]any{"response": "oops"}, "", ""},
		{"github", map[string]any{"email": "h@x.com"}, "", ""},
	}
	for _, c := range cases {
		p := Profile{Provider: c.provider, Raw: c.raw}
		assert.Equal(t, c.email, p.Email(), c.provider)
		assert.Equal(t, c.name, p.Name(), c.provider)
	}
	assert.Equal(t, "123", Profile{Provider: "kakao", Raw: map[string]any{"id": float64(123)}}.ExternalID())
}

func TestRegistrySkipsDisabled(t *testing.T) {
	logger.Set(zap.NewNop())
	cfg := &config.Config{
		GoogleClientID: "gid", GoogleClientSecret: "gs", GoogleRedirectURI: "http://localhost/google/callback",
		OAuthTimeout: time.Second,
	}
	r := NewRegistry(cfg, nil, nil)
	assert.Equal(t, []string{"google"}, r.Names())
	_, ok := r.Get("kakao")
	assert.False(t, ok)
	p, ok := r.Get("google")
	require.True(t, ok)
	assert.Equal(t, "google", p.Name)
}
