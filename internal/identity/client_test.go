package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-login/internal/cache"
)

func newTestClient(t *testing.T, h http.Handler, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:  srv.URL,
		TenantID: "acme",
		ClientID: "web",
		Timeout:  2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

// unsignedJWT arma un token con header/payload válidos y firma basura.
func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := base64.RawURLEncoding
	h, _ := json.Marshal(map[string]string{"alg": "EdDSA", "typ": "JWT"})
	p, err := json.Marshal(claims)
	require.NoError(t, err)
	return enc.EncodeToString(h) + "." + enc.EncodeToString(p) + "." + enc.EncodeToString([]byte("sig"))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url", TenantID: "t", ClientID: "c"})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "http://idp.local", ClientID: "c"})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "http://idp.local", TenantID: "t"})
	require.Error(t, err)

	c, err := New(Config{BaseURL: "http://idp.local/base/", TenantID: "t", ClientID: "c"})
	require.NoError(t, err)
	require.Equal(t, "http://idp.local/base/v2/auth/login", c.endpoint("/v2/auth/login", nil))
}

func TestLogin_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := unsignedJWT(t, map[string]any{"sub": "user-1", "exp": exp.Unix()})

	var got loginRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  token,
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "rt-1",
		})
	}))

	s, err := c.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, loginRequest{TenantID: "acme", ClientID: "web", Email: "ada@example.com", Password: "secret"}, got)
	require.Equal(t, token, s.AccessToken)
	require.Equal(t, "rt-1", s.RefreshToken)
	require.Equal(t, "user-1", s.Subject)
	require.True(t, s.ExpiresAt.Equal(exp))
}

func TestLogin_OpaqueTokenFallsBackToExpiresIn(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "opaque", "expires_in": 60})
	}))

	s, err := c.Login(context.Background(), "a@b.c", "x")
	require.NoError(t, err)
	require.Empty(t, s.Subject)
	require.WithinDuration(t, time.Now().Add(time.Minute), s.ExpiresAt, 5*time.Second)
}

func TestLogin_BackendRejection(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"INVALID_CREDENTIALS","message":"Invalid email or password"}`))
	}))

	_, err := c.Login(context.Background(), "a@b.c", "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	require.Equal(t, "Invalid email or password", apiErr.RejectionMessage())
	require.True(t, IsCode(err, "INVALID_CREDENTIALS"))
}

func TestLogin_LegacyErrorShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"missing fields"}`))
	}))

	_, err := c.Login(context.Background(), "", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "missing fields", apiErr.RejectionMessage())
}

func TestLogin_ServerErrorIsNotARejection(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"INTERNAL","message":"pq: connection refused"}`))
	}))

	_, err := c.Login(context.Background(), "a@b.c", "x")
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestLogin_MFARequired(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"mfa_required": true, "mfa_token": "m1", "amr": []string{"pwd"}})
	}))

	_, err := c.Login(context.Background(), "a@b.c", "x")
	require.True(t, IsCode(err, CodeMFARequired))
}

func TestSignInWithCredentials_HandsSessionOver(t *testing.T) {
	var handed *Session
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "refresh_token": "rt"})
	}), func(cfg *Config) {
		cfg.OnSession = func(_ context.Context, s *Session) { handed = s }
	})

	require.NoError(t, c.SignInWithCredentials(context.Background(), "a@b.c", "x"))
	require.NotNil(t, handed)
	require.Equal(t, "rt", handed.RefreshToken)
}

func TestRequestIDPropagation(t *testing.T) {
	var seen string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok"})
	}), func(cfg *Config) {
		cfg.RequestID = func(context.Context) string { return "rid-123" }
	})

	_, err := c.Login(context.Background(), "a@b.c", "x")
	require.NoError(t, err)
	require.Equal(t, "rid-123", seen)
}

func TestBeginOAuth_ReturnsLocationWithoutFollowing(t *testing.T) {
	var followed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/auth/social/google/start", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "acme", q.Get("tenant"))
		require.Equal(t, "web", q.Get("client_id"))
		require.Equal(t, "https://app.example.com/", q.Get("redirect_uri"))
		http.Redirect(w, r, "/authorize?state=abc", http.StatusFound)
	})
	mux.HandleFunc("/authorize", func(w http.ResponseWriter, r *http.Request) {
		followed.Store(true)
	})
	c := newTestClient(t, mux)

	loc, err := c.BeginOAuth(context.Background(), "google", "https://app.example.com/")
	require.NoError(t, err)
	require.Equal(t, c.base.String()+"/authorize?state=abc", loc)
	require.False(t, followed.Load())
}

func TestBeginOAuth_Errors(t *testing.T) {
	t.Run("backend rejection", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"PROVIDER_DISABLED","message":"Provider not enabled for this client"}`))
		}))
		_, err := c.BeginOAuth(context.Background(), "github", "http://localhost/")
		require.True(t, IsCode(err, "PROVIDER_DISABLED"))
	})

	t.Run("2xx without location", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		_, err := c.BeginOAuth(context.Background(), "github", "http://localhost/")
		require.ErrorIs(t, err, ErrMissingLocation)
	})

	t.Run("3xx without location", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusFound)
		}))
		_, err := c.BeginOAuth(context.Background(), "github", "http://localhost/")
		require.ErrorIs(t, err, ErrMissingLocation)
	})

	t.Run("transport", func(t *testing.T) {
		c, err := New(Config{BaseURL: "http://127.0.0.1:1", TenantID: "t", ClientID: "c", Timeout: time.Second})
		require.NoError(t, err)
		_, err = c.BeginOAuth(context.Background(), "github", "http://localhost/")
		require.Error(t, err)
		var apiErr *APIError
		require.False(t, errors.As(err, &apiErr))
	})
}

func TestProviders_CachedAndCollapsed(t *testing.T) {
	var calls atomic.Int32
	body := `{"providers":[{"name":"google","enabled":true,"ready":true,"popup":false},{"name":"github","enabled":true,"ready":false,"reason":"missing client secret"}]}`

	store, err := cache.New(context.Background(), cache.Config{Driver: "memory", DefaultTTL: time.Minute})
	require.NoError(t, err)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/v2/auth/providers", r.URL.Path)
		require.Equal(t, "acme", r.URL.Query().Get("tenant_id"))
		_, _ = w.Write([]byte(body))
	}), func(cfg *Config) {
		cfg.Cache = store
		cfg.DiscoveryTTL = time.Minute
	})

	ctx := context.Background()
	list, err := c.Providers(ctx, "http://localhost/")
	require.NoError(t, err)
	require.Len(t, list, 2)

	gh, ok := FindProvider(list, "GitHub")
	require.True(t, ok)
	require.False(t, gh.Ready)
	require.Equal(t, "missing client secret", gh.Reason)

	_, err = c.Providers(ctx, "http://localhost/")
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	require.NoError(t, c.InvalidateProviders(ctx, "http://localhost/"))
	_, err = c.Providers(ctx, "http://localhost/")
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestProviders_WithoutCache(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"providers":[]}`))
	}))

	for i := 0; i < 2; i++ {
		_, err := c.Providers(context.Background(), "")
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, calls.Load())
	require.NoError(t, c.InvalidateProviders(context.Background(), ""))
}
